package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

// ScheduleRepository holds the per-account calendar index. It is derived
// data; on any disagreement the posts table wins.
type ScheduleRepository interface {
	Append(ctx context.Context, entry *models.ScheduleEntry) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.ScheduleEntry, error)
	RemoveByPostID(ctx context.Context, postID string) error
	MarkPublished(ctx context.Context, postID string) error
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Append(ctx context.Context, entry *models.ScheduleEntry) error {
	query := `
		INSERT INTO schedule_entries (account_id, post_id, scheduled_time, status)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, entry.AccountID, entry.PostID, entry.ScheduledTime, entry.Status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.ScheduleEntry, error) {
	query := `
		SELECT account_id, post_id, scheduled_time, status
		FROM schedule_entries
		WHERE account_id = $1
		ORDER BY scheduled_time
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ScheduleEntry
	for rows.Next() {
		var entry models.ScheduleEntry
		err := rows.Scan(&entry.AccountID, &entry.PostID, &entry.ScheduledTime, &entry.Status)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *scheduleRepository) RemoveByPostID(ctx context.Context, postID string) error {
	query := `DELETE FROM schedule_entries WHERE post_id = $1`
	_, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) MarkPublished(ctx context.Context, postID string) error {
	query := `UPDATE schedule_entries SET status = $1 WHERE post_id = $2`
	_, err := r.db.ExecContext(ctx, query, models.ScheduleStatusPublished, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
