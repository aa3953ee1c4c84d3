package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/postpilot/internal/models"
)

// PostRepository is the durable store of posts. The status column is the
// partition index: every status change is a single row UPDATE, so a reader
// never observes a post in two partitions or in none.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ListByStatus(ctx context.Context, status string) ([]*models.Post, error)
	ListByAccount(ctx context.Context, accountID, status string) ([]*models.Post, error)
	Remove(ctx context.Context, id string) error
	MarkScheduled(ctx context.Context, id string, at time.Time) (*models.Post, error)
	MarkPublished(ctx context.Context, id string, force bool) (*models.Post, error)
	MarkDraft(ctx context.Context, id, note string) (*models.Post, error)
	MarkError(ctx context.Context, id, message string) (*models.Post, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, account_id, caption, media, format, status, scheduled_time, created_at, published_at, error_message`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.AccountID, &post.Caption, pq.Array(&post.Media),
		&post.Format, &post.Status, &post.ScheduledTime, &post.CreatedAt,
		&post.PublishedAt, &post.ErrorMessage)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, account_id, caption, media, format, status, scheduled_time, created_at, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query, post.ID, post.AccountID, post.Caption,
		pq.Array(post.Media), post.Format, post.Status, post.ScheduledTime,
		post.CreatedAt, post.ErrorMessage)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET caption = $1,
			media = $2,
			format = $3,
			status = $4,
			scheduled_time = $5,
			published_at = $6,
			error_message = $7
		WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query, post.Caption, pq.Array(post.Media),
		post.Format, post.Status, post.ScheduledTime, post.PublishedAt,
		post.ErrorMessage, post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) ListByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *postRepository) ListByAccount(ctx context.Context, accountID, status string) ([]*models.Post, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		query := `SELECT ` + postColumns + ` FROM posts WHERE account_id = $1 AND status = $2 ORDER BY created_at DESC`
		rows, err = r.db.QueryContext(ctx, query, accountID, status)
	} else {
		query := `SELECT ` + postColumns + ` FROM posts WHERE account_id = $1 ORDER BY created_at DESC`
		rows, err = r.db.QueryContext(ctx, query, accountID)
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*models.Post, error) {
	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkScheduled(ctx context.Context, id string, at time.Time) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = $1, scheduled_time = $2, error_message = ''
		WHERE id = $3 AND status = $4
		RETURNING ` + postColumns
	post, err := scanPost(r.db.QueryRowContext(ctx, query, models.PostStatusScheduled, at, id, models.PostStatusDraft))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.transitionError(ctx, id)
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// MarkPublished records the publication instant and clears the scheduled
// time. Unless force is set (manual publish), the post must currently be
// scheduled.
func (r *postRepository) MarkPublished(ctx context.Context, id string, force bool) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = $1, published_at = $2, scheduled_time = NULL, error_message = ''
		WHERE id = $3 AND (status = $4 OR ($5 AND status != $1))
		RETURNING ` + postColumns
	post, err := scanPost(r.db.QueryRowContext(ctx, query, models.PostStatusPublished,
		time.Now(), id, models.PostStatusScheduled, force))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.transitionError(ctx, id)
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// MarkDraft demotes a post back to draft, clearing its scheduled time. The
// note ends up in error_message so the editor can see why the slot was lost.
func (r *postRepository) MarkDraft(ctx context.Context, id, note string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = $1, scheduled_time = NULL, error_message = $2
		WHERE id = $3 AND status != $4
		RETURNING ` + postColumns
	post, err := scanPost(r.db.QueryRowContext(ctx, query, models.PostStatusDraft, note, id, models.PostStatusPublished))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.transitionError(ctx, id)
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) MarkError(ctx context.Context, id, message string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET status = $1, error_message = $2, scheduled_time = NULL
		WHERE id = $3 AND status != $4
		RETURNING ` + postColumns
	post, err := scanPost(r.db.QueryRowContext(ctx, query, models.PostStatusError, message, id, models.PostStatusPublished))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.transitionError(ctx, id)
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// transitionError tells a missing row apart from a row whose current status
// forbids the transition.
func (r *postRepository) transitionError(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return ErrInvalidTransition
}
