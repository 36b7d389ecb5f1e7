package assistantService

import (
	"context"
	"testing"
	"time"

	"TutorDesk/internal/api/assistant"
	assistantRepository "TutorDesk/internal/api/assistant/repository"
	"TutorDesk/internal/entity"
	"TutorDesk/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStudents struct{ students []entity.Student }

func (s stubStudents) GetAllStudents(ctx context.Context) ([]entity.Student, error) {
	return s.students, nil
}

type stubCommands struct{ recorded []entity.AssistantCommand }

func (s *stubCommands) CreateCommand(ctx context.Context, cmd entity.AssistantCommand) error {
	s.recorded = append(s.recorded, cmd)
	return nil
}

func (s *stubCommands) GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.AssistantCommand, int, error) {
	return s.recorded, len(s.recorded), nil
}

type stubRedis struct{}

func (stubRedis) SetSessionState(ctx context.Context, key, state string, expiration time.Duration) error {
	return nil
}

func (stubRedis) GetSessionState(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (stubRedis) DeleteSessionState(ctx context.Context, key string) error {
	return nil
}

type stubRepository struct{ client assistantRepository.Client }

func (s stubRepository) NewClient(tx bool) (assistantRepository.Client, error) {
	return s.client, nil
}

func newTestService(commands *stubCommands) IAssistantService {
	client := assistantRepository.Client{
		Students: stubStudents{students: planRoster()},
		Commands: commands,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}
	return NewAssistantService(
		testLogger(),
		stubRepository{client: client},
		stubRedis{},
		validator.New(validator.WithRequiredStructEnabled()),
		utils.New(),
	)
}

// Empty input is a conversation turn, not a transport failure: the
// interpreter answers with a clarification instead of the request bouncing.
func TestHandleCommandEmptyTranscriptClarifies(t *testing.T) {
	commands := &stubCommands{}
	svc := newTestService(commands)

	result, err := svc.HandleCommand(context.Background(), "user1", assistant.CommandRequest{Transcript: ""})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, assistant.StatusNeedsClarification, result.Status)
	assert.Contains(t, result.Message, "didn't catch")
	assert.Nil(t, result.Plan)

	// The exchange still lands in command history.
	require.Len(t, commands.recorded, 1)
	assert.Equal(t, assistant.StatusNeedsClarification, commands.recorded[0].Status)
}

func TestHandleCommandWhitespaceTranscriptClarifies(t *testing.T) {
	svc := newTestService(&stubCommands{})

	result, err := svc.HandleCommand(context.Background(), "user1", assistant.CommandRequest{Transcript: "   "})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, assistant.StatusNeedsClarification, result.Status)
}
