package assistantRepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"TutorDesk/internal/api/assistant"
	"TutorDesk/internal/entity"
	contextPkg "TutorDesk/pkg/context"
	"TutorDesk/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type LessonDB struct {
	ID              sql.NullString `db:"id"`
	StudentID       sql.NullString `db:"student_id"`
	LessonDate      sql.NullString `db:"lesson_date"`
	LessonTime      sql.NullString `db:"lesson_time"`
	DurationMinutes sql.NullInt64  `db:"duration_minutes"`
	AmountCents     sql.NullInt64  `db:"amount_cents"`
	Completed       sql.NullBool   `db:"completed"`
	Note            sql.NullString `db:"note"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (l LessonDB) toEntity() entity.Lesson {
	return entity.Lesson{
		ID:              l.ID.String,
		StudentID:       l.StudentID.String,
		Date:            l.LessonDate.String,
		Time:            l.LessonTime.String,
		DurationMinutes: int(l.DurationMinutes.Int64),
		AmountCents:     int(l.AmountCents.Int64),
		Completed:       l.Completed.Bool,
		Note:            l.Note.String,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func (r *lessonRepository) GetLessonsByDate(ctx context.Context, date string) ([]entity.Lesson, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetLessonsByDate, map[string]interface{}{
		"lesson_date": date,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLessonsByDate named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []LessonDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching lessons by date")
		return nil, err
	}

	lessons := make([]entity.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toEntity())
	}
	return lessons, nil
}

// GetAllLessons backs post-write verification: inside a transaction it sees
// every write already issued, so the read-back reflects the real store state.
func (r *lessonRepository) GetAllLessons(ctx context.Context) ([]entity.Lesson, error) {
	requestID := contextPkg.GetRequestID(ctx)

	var rows []LessonDB
	if err := r.q.SelectContext(ctx, &rows, r.q.Rebind(queryGetAllLessons)); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching all lessons")
		return nil, err
	}

	lessons := make([]entity.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toEntity())
	}
	return lessons, nil
}

func (r *lessonRepository) GetLessonByID(ctx context.Context, id string) (entity.Lesson, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row LessonDB

	query, args, err := sqlx.Named(queryGetLessonByID, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLessonByID named query preparation err")
		return entity.Lesson{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Lesson{}, entity.ErrLessonNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching lesson by id")
		return entity.Lesson{}, err
	}

	return row.toEntity(), nil
}

func (r *lessonRepository) GetLessonByStudentAndDate(ctx context.Context, studentID, date string) (entity.Lesson, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row LessonDB

	query, args, err := sqlx.Named(queryGetLessonByStudentAndDate, map[string]interface{}{
		"student_id":  studentID,
		"lesson_date": date,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLessonByStudentAndDate named query preparation err")
		return entity.Lesson{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Lesson{}, entity.ErrLessonNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching lesson by student and date")
		return entity.Lesson{}, err
	}

	return row.toEntity(), nil
}

// UpdateLessonByID builds the SET clause from the patch so untouched columns
// keep their values.
func (r *lessonRepository) UpdateLessonByID(ctx context.Context, id string, patch assistant.LessonPatch) error {
	requestID := contextPkg.GetRequestID(ctx)

	var sets []string
	argsKV := map[string]interface{}{
		"id":         id,
		"updated_at": time.Now().UTC(),
	}

	if patch.Date != nil {
		sets = append(sets, "lesson_date = :lesson_date")
		argsKV["lesson_date"] = *patch.Date
	}
	if patch.Time != nil {
		sets = append(sets, "lesson_time = :lesson_time")
		argsKV["lesson_time"] = *patch.Time
	}
	if patch.DurationMinutes != nil {
		sets = append(sets, "duration_minutes = :duration_minutes")
		argsKV["duration_minutes"] = *patch.DurationMinutes
	}
	if patch.AmountCents != nil {
		sets = append(sets, "amount_cents = :amount_cents")
		argsKV["amount_cents"] = *patch.AmountCents
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = :completed")
		argsKV["completed"] = *patch.Completed
	}
	if patch.Note != nil {
		sets = append(sets, "note = :note")
		argsKV["note"] = *patch.Note
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = :updated_at")

	raw := fmt.Sprintf("UPDATE lessons SET %s WHERE id = :id", strings.Join(sets, ", "))

	query, args, err := sqlx.Named(raw, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateLessonByID named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating lesson")
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return entity.ErrLessonNotFound
	}

	return nil
}

func (r *lessonRepository) CreateLesson(ctx context.Context, create assistant.PlannedCreate) (string, error) {
	requestID := contextPkg.GetRequestID(ctx)

	id, err := utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate lesson id")
		return "", err
	}

	now := time.Now().UTC()
	argsKV := map[string]interface{}{
		"id":               id,
		"student_id":       create.StudentID,
		"lesson_date":      create.Date,
		"lesson_time":      create.Time,
		"duration_minutes": create.DurationMinutes,
		"amount_cents":     create.AmountCents,
		"completed":        create.Completed,
		"note":             create.Note,
		"created_at":       now,
		"updated_at":       now,
	}

	query, args, err := sqlx.Named(queryCreateLesson, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateLesson named query preparation err")
		return "", err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating lesson")
		return "", err
	}

	return id, nil
}
