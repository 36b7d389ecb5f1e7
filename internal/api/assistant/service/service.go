package assistantService

import (
	"context"

	"TutorDesk/internal/api/assistant"
	assistantRepository "TutorDesk/internal/api/assistant/repository"
	"TutorDesk/pkg/redis"
	"TutorDesk/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type IAssistantService interface {
	HandleCommand(ctx context.Context, userID string, req assistant.CommandRequest) (*assistant.CommandResult, error)
	GetCommandHistory(ctx context.Context, userID string, page, limit int) (*assistant.CommandHistoryResponse, error)
	GetDaySchedule(ctx context.Context, date string) (*assistant.DayScheduleResponse, error)
}

type assistantService struct {
	log           *logrus.Logger
	assistantRepo assistantRepository.Repository
	redis         redis.IRedis
	validator     *validator.Validate
	utils         utils.IUtils
}

func NewAssistantService(
	log *logrus.Logger,
	assistantRepo assistantRepository.Repository,
	redisClient redis.IRedis,
	validate *validator.Validate,
	utilsClient utils.IUtils,
) IAssistantService {
	return &assistantService{
		log:           log,
		assistantRepo: assistantRepo,
		redis:         redisClient,
		validator:     validate,
		utils:         utilsClient,
	}
}
