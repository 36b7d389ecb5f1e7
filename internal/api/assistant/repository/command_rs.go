package assistantRepository

import (
	"context"
	"database/sql"
	"time"

	"TutorDesk/internal/entity"
	contextPkg "TutorDesk/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type CommandDB struct {
	ID         sql.NullString `db:"id"`
	UserID     sql.NullString `db:"user_id"`
	Transcript sql.NullString `db:"transcript"`
	Status     sql.NullString `db:"status"`
	Message    sql.NullString `db:"message"`
	Plan       sql.NullString `db:"plan"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *commandRepository) CreateCommand(ctx context.Context, cmd entity.AssistantCommand) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":         cmd.ID,
		"user_id":    cmd.UserID,
		"transcript": cmd.Transcript,
		"status":     cmd.Status,
		"message":    cmd.Message,
		"plan":       cmd.Plan,
		"created_at": cmd.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateCommand, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateCommand named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when recording command")
		return err
	}

	return nil
}

func (r *commandRepository) GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.AssistantCommand, int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetCommandsByUserID, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommandsByUserID named query preparation err")
		return nil, 0, err
	}
	query = r.q.Rebind(query)

	var rows []CommandDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching command history")
		return nil, 0, err
	}

	countQuery, countArgs, err := sqlx.Named(queryCountCommandsByUserID, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		return nil, 0, err
	}
	countQuery = r.q.Rebind(countQuery)

	var total int
	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when counting command history")
		return nil, 0, err
	}

	commands := make([]entity.AssistantCommand, 0, len(rows))
	for _, row := range rows {
		commands = append(commands, entity.AssistantCommand{
			ID:         row.ID.String,
			UserID:     row.UserID.String,
			Transcript: row.Transcript.String,
			Status:     row.Status.String,
			Message:    row.Message.String,
			Plan:       row.Plan.String,
			CreatedAt:  row.CreatedAt,
		})
	}

	return commands, total, nil
}
