package models

import "time"

// ScheduleEntry is a derived calendar record. The post's own status is the
// source of truth; entries exist only so that per-account calendar queries
// do not scan every post.
type ScheduleEntry struct {
	AccountID     string    `db:"account_id" json:"account_id"`
	PostID        string    `db:"post_id" json:"post_id"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Status        string    `db:"status" json:"status"` // scheduled, published
}

const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusPublished = "published"
)
