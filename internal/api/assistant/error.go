package assistant

import "TutorDesk/pkg/response"

var (
	ErrInvalidDate         = response.NewError(400, "invalid date")
	ErrNothingToDo         = response.NewError(422, "command produced no changes")
	ErrNoScheduledStudents = response.NewError(422, "no students scheduled on that day")
	ErrPlanFailed          = response.NewError(500, "failed to plan command")
	ErrExecutionFailed     = response.NewError(500, "failed to apply changes")
	ErrVerificationFailed  = response.NewError(500, "changes could not be verified")
	ErrCommandNotFound     = response.NewError(404, "command not found")
	ErrUnauthorizedAccess  = response.NewError(403, "unauthorized access to assistant features")
)
