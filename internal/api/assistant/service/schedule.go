package assistantService

import (
	"context"
	"time"

	"TutorDesk/internal/api/assistant"
	contextPkg "TutorDesk/pkg/context"

	"github.com/sirupsen/logrus"
)

// GetDaySchedule projects the weekly schedule onto one date and merges in
// whatever lesson rows already exist for it.
func (s *assistantService) GetDaySchedule(ctx context.Context, date string) (*assistant.DayScheduleResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	parsed, err := time.Parse(dateLayout, date)
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
	lessons, err := repo.Lessons.GetLessonsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	projected := assistant.ProjectDay(students, lessons, date, int(parsed.Weekday()))

	return &assistant.DayScheduleResponse{
		Date:    date,
		Lessons: projected,
	}, nil
}
