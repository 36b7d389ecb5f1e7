package assistantHandler

import (
	assistantService "TutorDesk/internal/api/assistant/service"
	"TutorDesk/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: as,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	assistant.Use(h.middleware.NewRateLimiter)
	assistant.Use(h.middleware.NewTokenMiddleware)

	assistant.Post("/command", h.HandleCommand)
	assistant.Get("/history", h.GetCommandHistory)
	assistant.Get("/schedule/:date", h.GetDaySchedule)
}
