package assistantService

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"TutorDesk/internal/api/assistant"
	assistantRepository "TutorDesk/internal/api/assistant/repository"
	"TutorDesk/internal/entity"
	contextPkg "TutorDesk/pkg/context"
	"TutorDesk/pkg/nlp"

	"github.com/sirupsen/logrus"
)

const (
	pendingClarificationPrefix = "assistant:pending:"
	pendingClarificationTTL    = 10 * time.Minute
)

// HandleCommand runs one transcript through the full pipeline: interpret,
// validate, plan, execute, verify, record. Clarifications and terminal
// domain failures come back as a result, not an error; an error return means
// infrastructure broke.
func (s *assistantService) HandleCommand(ctx context.Context, userID string, req assistant.CommandRequest) (*assistant.CommandResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	ref, err := s.referenceDate(req)
	if err != nil {
		return nil, assistant.ErrInvalidDate
	}

	repo, err := s.assistantRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	students, err := repo.Students.GetAllStudents(ctx)
	if err != nil {
		return nil, err
	}

	outcome := nlp.Classify(req.Transcript, ref, students)

	if outcome.Clarification != nil {
		result := s.clarificationResult(ctx, userID, req, outcome.Clarification)
		s.recordCommand(ctx, repo, userID, req.Transcript, result)
		return result, nil
	}

	cmd := outcome.Command
	if err := s.validator.Struct(cmd); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"command":    cmd.Type,
			"error":      err.Error(),
		}).Error("Structured command failed validation")
		return nil, assistant.ErrPlanFailed
	}

	if cmd.Type == nlp.CommandHelp {
		result := &assistant.CommandResult{Status: assistant.StatusSuccess, Message: nlp.HelpText}
		s.attachDebug(result, req, cmd, ref)
		s.clearPendingClarification(ctx, userID)
		s.recordCommand(ctx, repo, userID, req.Transcript, result)
		return result, nil
	}

	plan, clarification, message, err := BuildPlan(ctx, repo.Adapter(), cmd, ref)
	if err != nil {
		if terminal, ok := terminalResult(err); ok {
			s.attachDebug(terminal, req, cmd, ref)
			s.recordCommand(ctx, repo, userID, req.Transcript, terminal)
			return terminal, nil
		}
		return nil, err
	}
	if clarification != nil {
		result := s.clarificationResult(ctx, userID, req, clarification)
		s.attachDebug(result, req, cmd, ref)
		s.recordCommand(ctx, repo, userID, req.Transcript, result)
		return result, nil
	}

	if req.DryRun {
		result := &assistant.CommandResult{
			Status:  assistant.StatusSuccess,
			Message: "Dry run: " + message + " Nothing was changed.",
			Plan:    plan,
		}
		s.attachDebug(result, req, cmd, ref)
		s.recordCommand(ctx, repo, userID, req.Transcript, result)
		return result, nil
	}

	txRepo, err := s.assistantRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to open transaction")
		return nil, err
	}
	defer txRepo.Rollback()

	if err := ExecutePlan(ctx, s.log, txRepo.Adapter(), plan); err != nil {
		if terminal, ok := terminalResult(err); ok {
			s.attachDebug(terminal, req, cmd, ref)
			s.recordCommand(ctx, repo, userID, req.Transcript, terminal)
			return terminal, nil
		}
		return nil, err
	}

	if err := txRepo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit plan")
		return nil, assistant.ErrExecutionFailed
	}

	result := &assistant.CommandResult{
		Status:  assistant.StatusSuccess,
		Message: message,
		Plan:    plan,
	}
	s.attachDebug(result, req, cmd, ref)
	s.clearPendingClarification(ctx, userID)
	s.recordCommand(ctx, repo, userID, req.Transcript, result)

	return result, nil
}

func (s *assistantService) GetCommandHistory(ctx context.Context, userID string, page, limit int) (*assistant.CommandHistoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	repo, err := s.assistantRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	commands, total, err := repo.Commands.GetCommandsByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	entries := make([]assistant.CommandHistoryEntry, 0, len(commands))
	for _, cmd := range commands {
		entries = append(entries, assistant.CommandHistoryEntry{
			ID:         cmd.ID,
			Transcript: cmd.Transcript,
			Status:     cmd.Status,
			Message:    cmd.Message,
			CreatedAt:  cmd.CreatedAt,
		})
	}

	return &assistant.CommandHistoryResponse{Commands: entries, Total: total}, nil
}

// referenceDate anchors "today" for the request: the explicitly selected
// date wins, then the caller's timezone, then server time.
func (s *assistantService) referenceDate(req assistant.CommandRequest) (time.Time, error) {
	if req.SelectedDate != "" {
		return time.Parse(dateLayout, req.SelectedDate)
	}

	loc := time.Local
	if req.Timezone != "" {
		parsed, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return time.Time{}, err
		}
		loc = parsed
	}

	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
}

func (s *assistantService) clarificationResult(ctx context.Context, userID string, req assistant.CommandRequest, clar *nlp.Clarification) *assistant.CommandResult {
	result := &assistant.CommandResult{
		Status:               assistant.StatusNeedsClarification,
		Message:              clar.Question,
		ClarificationOptions: clar.Options,
	}
	s.storePendingClarification(ctx, userID, clar)
	return result
}

// terminalResult maps domain sentinels onto error results the caller can
// show directly. Anything else bubbles up as a real failure.
func terminalResult(err error) (*assistant.CommandResult, bool) {
	for _, sentinel := range []error{
		assistant.ErrNoScheduledStudents,
		assistant.ErrNothingToDo,
		assistant.ErrExecutionFailed,
		assistant.ErrVerificationFailed,
	} {
		if errors.Is(err, sentinel) {
			return &assistant.CommandResult{Status: assistant.StatusError, Message: sentinel.Error()}, true
		}
	}
	return nil, false
}

func (s *assistantService) attachDebug(result *assistant.CommandResult, req assistant.CommandRequest, cmd *nlp.StructuredCommand, ref time.Time) {
	if !req.Debug {
		return
	}
	result.Debug = &assistant.CommandDebug{
		Command:       cmd,
		ReferenceDate: ref.Format(dateLayout),
	}
}

func (s *assistantService) storePendingClarification(ctx context.Context, userID string, clar *nlp.Clarification) {
	payload, err := json.Marshal(clar)
	if err != nil {
		return
	}
	if err := s.redis.SetSessionState(ctx, pendingClarificationPrefix+userID, string(payload), pendingClarificationTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to store pending clarification")
	}
}

func (s *assistantService) clearPendingClarification(ctx context.Context, userID string) {
	if err := s.redis.DeleteSessionState(ctx, pendingClarificationPrefix+userID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to clear pending clarification")
	}
}

// Command history is best effort: a failed insert is logged and swallowed so
// bookkeeping never breaks the command itself.
func (s *assistantService) recordCommand(ctx context.Context, repo assistantRepository.Client, userID, transcript string, result *assistant.CommandResult) {
	requestID := contextPkg.GetRequestID(ctx)

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to generate command history id")
		return
	}

	var planJSON string
	if result.Plan != nil {
		if raw, err := json.Marshal(result.Plan); err == nil {
			planJSON = string(raw)
		}
	}

	record := entity.AssistantCommand{
		ID:         id,
		UserID:     userID,
		Transcript: transcript,
		Status:     result.Status,
		Message:    result.Message,
		Plan:       planJSON,
		CreatedAt:  time.Now().UTC(),
	}

	if err := repo.Commands.CreateCommand(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to record command history")
	}
}
