package assistantService

import (
	"context"
	"fmt"

	"TutorDesk/internal/api/assistant"
	"TutorDesk/internal/entity"
	contextPkg "TutorDesk/pkg/context"

	"github.com/sirupsen/logrus"
)

// Execution states, in the only order they may advance.
type executionState string

const (
	statePlanned   executionState = "planned"
	stateExecuting executionState = "executing"
	stateVerifying executionState = "verifying"
	stateConfirmed executionState = "confirmed"
	stateFailed    executionState = "verification_failed"
)

// ExecutePlan applies a plan and then re-reads the lesson collection to
// confirm the writes actually landed. Updates run before creates so a move
// off a date can never collide with a create on it. The plan is only
// reported applied once verification passes.
func ExecutePlan(ctx context.Context, log *logrus.Logger, ad assistant.Adapter, plan *assistant.CommandPlan) error {
	requestID := contextPkg.GetRequestID(ctx)

	if plan.IsEmpty() {
		return assistant.ErrNothingToDo
	}

	state := statePlanned

	state = stateExecuting
	for _, update := range plan.Updates {
		if err := ad.UpdateLessonByID(ctx, update.LessonID, update.Patch); err != nil {
			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"state":      state,
				"lesson_id":  update.LessonID,
				"error":      err.Error(),
			}).Error("Failed to apply lesson update")
			return assistant.ErrExecutionFailed
		}
	}
	for _, create := range plan.Creates {
		if _, err := ad.AddLesson(ctx, create); err != nil {
			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"state":      state,
				"student_id": create.StudentID,
				"error":      err.Error(),
			}).Error("Failed to insert lesson")
			return assistant.ErrExecutionFailed
		}
	}

	state = stateVerifying
	if err := verifyPlan(ctx, ad, plan); err != nil {
		state = stateFailed
		log.WithFields(logrus.Fields{
			"request_id": requestID,
			"state":      state,
			"error":      err.Error(),
		}).Error("Plan verification failed after writes")
		return assistant.ErrVerificationFailed
	}

	state = stateConfirmed
	log.WithFields(logrus.Fields{
		"request_id": requestID,
		"state":      state,
		"updates":    len(plan.Updates),
		"creates":    len(plan.Creates),
	}).Info("Plan applied and verified")

	return nil
}

// verifyPlan re-reads the full lesson collection and checks every expectation
// against it. Reading the whole collection also catches writes the plan never
// asked for, like a create landing twice.
func verifyPlan(ctx context.Context, ad assistant.Adapter, plan *assistant.CommandPlan) error {
	lessons, err := ad.LessonsForVerification(ctx)
	if err != nil {
		return fmt.Errorf("read back lessons: %w", err)
	}

	byID := make(map[string]entity.Lesson, len(lessons))
	for _, lesson := range lessons {
		byID[lesson.ID] = lesson
	}

	for _, expect := range plan.Verification.Fields {
		row, ok := byID[expect.LessonID]
		if !ok {
			return fmt.Errorf("lesson %s missing after write", expect.LessonID)
		}
		if got := assistant.LessonField(row, expect.Field); got != expect.Want {
			return fmt.Errorf("lesson %s field %s: got %q, want %q", expect.LessonID, expect.Field, got, expect.Want)
		}
	}

	for _, expect := range plan.Verification.Rows {
		var matches []entity.Lesson
		for _, lesson := range lessons {
			if lesson.StudentID == expect.StudentID && lesson.Date == expect.Date {
				matches = append(matches, lesson)
			}
		}
		switch {
		case len(matches) == 0:
			return fmt.Errorf("expected lesson for student %s on %s, found none", expect.StudentID, expect.Date)
		case len(matches) > 1:
			return fmt.Errorf("found %d lessons for student %s on %s, want exactly one", len(matches), expect.StudentID, expect.Date)
		case matches[0].Completed != expect.Completed:
			return fmt.Errorf("lesson for student %s on %s: completed = %t, want %t", expect.StudentID, expect.Date, matches[0].Completed, expect.Completed)
		}
	}

	return nil
}
