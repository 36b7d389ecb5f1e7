package assistantRepository

import (
	"TutorDesk/internal/api/assistant"
	"TutorDesk/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Students: &studentRepository{q: sqlExecutor, log: r.log},
		Lessons:  &lessonRepository{q: sqlExecutor, log: r.log},
		Commands: &commandRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Students interface {
		GetAllStudents(ctx context.Context) ([]entity.Student, error)
	}

	Lessons interface {
		GetLessonsByDate(ctx context.Context, date string) ([]entity.Lesson, error)
		GetAllLessons(ctx context.Context) ([]entity.Lesson, error)
		GetLessonByID(ctx context.Context, id string) (entity.Lesson, error)
		GetLessonByStudentAndDate(ctx context.Context, studentID, date string) (entity.Lesson, error)
		UpdateLessonByID(ctx context.Context, id string, patch assistant.LessonPatch) error
		CreateLesson(ctx context.Context, create assistant.PlannedCreate) (string, error)
	}

	Commands interface {
		CreateCommand(ctx context.Context, cmd entity.AssistantCommand) error
		GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.AssistantCommand, int, error)
	}

	Commit   func() error
	Rollback func() error
}

// Adapter exposes the client through the planner's data-access contract.
func (c Client) Adapter() assistant.Adapter {
	return clientAdapter{c}
}

type clientAdapter struct {
	c Client
}

func (a clientAdapter) Students(ctx context.Context) ([]entity.Student, error) {
	return a.c.Students.GetAllStudents(ctx)
}

func (a clientAdapter) LessonsForDate(ctx context.Context, date string) ([]entity.Lesson, error) {
	return a.c.Lessons.GetLessonsByDate(ctx, date)
}

func (a clientAdapter) LessonsForVerification(ctx context.Context) ([]entity.Lesson, error) {
	return a.c.Lessons.GetAllLessons(ctx)
}

func (a clientAdapter) LessonByID(ctx context.Context, id string) (entity.Lesson, error) {
	return a.c.Lessons.GetLessonByID(ctx, id)
}

func (a clientAdapter) LessonForStudentOnDate(ctx context.Context, studentID, date string) (entity.Lesson, error) {
	return a.c.Lessons.GetLessonByStudentAndDate(ctx, studentID, date)
}

func (a clientAdapter) UpdateLessonByID(ctx context.Context, id string, patch assistant.LessonPatch) error {
	return a.c.Lessons.UpdateLessonByID(ctx, id, patch)
}

func (a clientAdapter) AddLesson(ctx context.Context, create assistant.PlannedCreate) (string, error) {
	return a.c.Lessons.CreateLesson(ctx, create)
}

type studentRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type lessonRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type commandRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
