package assistant

import (
	"TutorDesk/internal/entity"

	"golang.org/x/net/context"
)

// Adapter is the data-access contract the planner and executor run against.
// The production implementation wraps the postgres repository; tests supply
// an in-memory fake.
type Adapter interface {
	// Students returns the full roster, terminated students included.
	Students(ctx context.Context) ([]entity.Student, error)
	// LessonsForDate returns every lesson row recorded on the date.
	LessonsForDate(ctx context.Context, date string) ([]entity.Lesson, error)
	// LessonsForVerification returns the full lesson collection, including
	// writes already issued in the current transaction. The executor's
	// read-back runs against this, never against a cached view.
	LessonsForVerification(ctx context.Context) ([]entity.Lesson, error)
	// LessonByID fetches one row, entity.ErrLessonNotFound when absent.
	LessonByID(ctx context.Context, id string) (entity.Lesson, error)
	// LessonForStudentOnDate fetches the row for (student, date),
	// entity.ErrLessonNotFound when absent.
	LessonForStudentOnDate(ctx context.Context, studentID, date string) (entity.Lesson, error)
	// UpdateLessonByID applies the set fields of the patch to one row.
	UpdateLessonByID(ctx context.Context, id string, patch LessonPatch) error
	// AddLesson inserts a new row and returns its id.
	AddLesson(ctx context.Context, create PlannedCreate) (string, error)
}
