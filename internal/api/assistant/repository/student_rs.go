package assistantRepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"TutorDesk/internal/entity"
	contextPkg "TutorDesk/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type StudentDB struct {
	ID              sql.NullString `db:"id"`
	FirstName       sql.NullString `db:"first_name"`
	LastName        sql.NullString `db:"last_name"`
	Slot            sql.NullString `db:"slot"`
	AdditionalSlots sql.NullString `db:"additional_slots"`
	ScheduleChange  sql.NullString `db:"schedule_change"`
	TerminatedOn    sql.NullString `db:"terminated_on"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r *studentRepository) GetAllStudents(ctx context.Context) ([]entity.Student, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetAllStudents, map[string]interface{}{})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllStudents named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []StudentDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching students")
		return nil, err
	}

	students := make([]entity.Student, 0, len(rows))
	for _, row := range rows {
		student, err := r.makeStudent(row)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"student_id": row.ID.String,
				"error":      err.Error(),
			}).Error("Failed to decode student schedule columns")
			return nil, err
		}
		students = append(students, student)
	}

	return students, nil
}

// Slot columns hold JSON; a malformed column fails the whole load because a
// roster with silently dropped slots would corrupt planning downstream.
func (r *studentRepository) makeStudent(row StudentDB) (entity.Student, error) {
	student := entity.Student{
		ID:           row.ID.String,
		FirstName:    row.FirstName.String,
		LastName:     row.LastName.String,
		TerminatedOn: row.TerminatedOn.String,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}

	if row.Slot.Valid && row.Slot.String != "" {
		if err := json.Unmarshal([]byte(row.Slot.String), &student.Slot); err != nil {
			return entity.Student{}, err
		}
	}
	if row.AdditionalSlots.Valid && row.AdditionalSlots.String != "" {
		if err := json.Unmarshal([]byte(row.AdditionalSlots.String), &student.AdditionalSlots); err != nil {
			return entity.Student{}, err
		}
	}
	if row.ScheduleChange.Valid && row.ScheduleChange.String != "" {
		var change entity.ScheduleChange
		if err := json.Unmarshal([]byte(row.ScheduleChange.String), &change); err != nil {
			return entity.Student{}, err
		}
		student.ScheduleChange = &change
	}

	return student, nil
}
