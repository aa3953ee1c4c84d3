package models

import "time"

// Post is one unit of caption + media destined for a single account.
// ScheduledTime is set iff Status is "scheduled"; PublishedAt is set iff
// Status is "published" and never changes afterwards.
type Post struct {
	ID            string     `db:"id" json:"id"`
	AccountID     string     `db:"account_id" json:"account_id"`
	Caption       string     `db:"caption" json:"caption"`
	Media         []string   `db:"media" json:"media"`
	Format        string     `db:"format" json:"format"` // photo, video
	Status        string     `db:"status" json:"status"` // draft, scheduled, published, error
	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduled_time,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	ErrorMessage  string     `db:"error_message" json:"error_message,omitempty"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusError     = "error"
)

const (
	PostFormatPhoto = "photo"
	PostFormatVideo = "video"
)
