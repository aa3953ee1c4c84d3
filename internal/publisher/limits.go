package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// checkAccountLimits enforces the account-level posting invariants: no more
// than the configured number of posts per day, and at least the minimum
// interval since the account's last successful publish today. The interval
// violation carries the "too soon" marker so the loop retries it softly;
// the daily cap is a hard failure.
func (p *Publisher) checkAccountLimits(ctx context.Context, accountID string) error {
	published, err := p.posts.ListByAccount(ctx, accountID, models.PostStatusPublished)
	if err != nil {
		return fmt.Errorf("unable to check posting limits: %w", err)
	}

	now := p.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var todayCount int
	var lastPublished time.Time
	for _, post := range published {
		if post.PublishedAt == nil || post.PublishedAt.Before(todayStart) {
			continue
		}
		todayCount++
		if post.PublishedAt.After(lastPublished) {
			lastPublished = *post.PublishedAt
		}
	}

	if todayCount >= p.posting.MaxPostsPerDay {
		return fmt.Errorf("daily posting limit reached: at most %d posts per day", p.posting.MaxPostsPerDay)
	}

	if !lastPublished.IsZero() {
		if elapsed := now.Sub(lastPublished); elapsed < p.posting.MinInterval {
			return fmt.Errorf("too soon to publish: need to wait another %s", (p.posting.MinInterval - elapsed).Round(time.Second))
		}
	}
	return nil
}
