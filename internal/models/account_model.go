package models

import "time"

type Account struct {
	ID          string     `db:"id" json:"id"`
	Username    string     `db:"username" json:"username"`
	Password    string     `db:"password" json:"-"` // AES-GCM encrypted
	Status      string     `db:"status" json:"status"`
	LastLogin   *time.Time `db:"last_login" json:"last_login,omitempty"`
	PostsPerDay int        `db:"posts_per_day" json:"posts_per_day"`
	Format      string     `db:"format" json:"format"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

const (
	AccountStatusActive    = "active"
	AccountStatusInactive  = "inactive"
	AccountStatusError     = "error"
	AccountStatusLoggingIn = "logging_in"
)
