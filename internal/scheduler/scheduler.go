// Package scheduler assigns publish timestamps to batches of draft posts,
// spreading them across days inside the configured posting window.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

type Scheduler struct {
	posts    repository.PostRepository
	schedule repository.ScheduleRepository
	cfg      config.Posting

	now func() time.Time
}

func New(posts repository.PostRepository, schedule repository.ScheduleRepository, cfg config.Posting) *Scheduler {
	return &Scheduler{
		posts:    posts,
		schedule: schedule,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Assign distributes the given draft posts over consecutive days,
// postsPerDay per day, evenly spaced inside the posting window and never
// closer than the minimum interval. Posts that are missing or not drafts
// are skipped with a warning; the rest of the batch proceeds.
func (s *Scheduler) Assign(ctx context.Context, accountID string, postIDs []string, postsPerDay int, startTime *time.Time) ([]*models.Post, error) {
	if postsPerDay <= 0 {
		postsPerDay = s.cfg.DefaultPerDay
	}

	now := s.now()
	start := now
	if startTime != nil {
		start = *startTime
	}
	start = truncateToHour(start)
	if start.Before(now) {
		start = now
	}

	// Clamp the campaign start into the posting window.
	switch {
	case start.Hour() < s.cfg.WindowStartHour:
		start = atHour(start, s.cfg.WindowStartHour)
	case start.Hour() >= s.cfg.WindowEndHour:
		start = atHour(start.AddDate(0, 0, 1), s.cfg.WindowStartHour)
	default:
		start = start.Add(s.cfg.MinInterval)
	}

	var scheduled []*models.Post

	total := len(postIDs)
	postIndex := 0

	for day := 0; postIndex < total; day++ {
		count := postsPerDay
		if remaining := total - postIndex; remaining < count {
			count = remaining
		}

		times := s.distributeDay(start.AddDate(0, 0, day), count, now)

		for _, at := range times {
			if postIndex >= total {
				break
			}
			postID := postIDs[postIndex]
			postIndex++

			post, err := s.posts.MarkScheduled(ctx, postID, at)
			if err != nil {
				slog.Warn("skipping post while scheduling", "post_id", postID, "error", err)
				continue
			}
			scheduled = append(scheduled, post)

			entry := &models.ScheduleEntry{
				AccountID:     accountID,
				PostID:        postID,
				ScheduledTime: at,
				Status:        models.ScheduleStatusScheduled,
			}
			if err := s.schedule.Append(ctx, entry); err != nil {
				slog.Warn("unable to index scheduled post", "post_id", postID, "error", err)
			}
		}
	}

	slog.Info("scheduled posts", "account_id", accountID, "count", len(scheduled))
	return scheduled, nil
}

// distributeDay spreads count posts evenly across the posting window of the
// given day. When the day is today and the window has already opened, the
// usable window starts one minimum interval from now (rounded down to five
// minutes). A day whose remaining window cannot fit count posts at the
// minimum interval is abandoned for the next day's full window. Slots that
// have already elapsed are dropped, never backfilled.
func (s *Scheduler) distributeDay(day time.Time, count int, now time.Time) []time.Time {
	windowStart := atHour(day, s.cfg.WindowStartHour)
	windowEnd := atHour(day, s.cfg.WindowEndHour)

	if sameDate(windowStart, now) && windowStart.Before(now) {
		windowStart = roundDownToFiveMinutes(now.Add(s.cfg.MinInterval))
	}

	total := windowEnd.Sub(windowStart)
	required := time.Duration(count) * s.cfg.MinInterval

	if total < required {
		windowStart = atHour(windowStart.AddDate(0, 0, 1), s.cfg.WindowStartHour)
		windowEnd = atHour(windowStart, s.cfg.WindowEndHour)
		total = windowEnd.Sub(windowStart)
	}

	interval := total / time.Duration(count)
	if interval < s.cfg.MinInterval {
		interval = s.cfg.MinInterval
	}

	var times []time.Time
	for i := 0; i < count; i++ {
		at := windowStart.Add(time.Duration(i) * interval)
		if at.Hour() >= s.cfg.WindowEndHour {
			break
		}
		if !at.After(now) {
			continue
		}
		times = append(times, at)
	}
	return times
}

// ScheduledForAccount answers "what's on this account's calendar" from the
// side index without scanning every post.
func (s *Scheduler) ScheduledForAccount(ctx context.Context, accountID string) ([]*models.ScheduleEntry, error) {
	return s.schedule.ListByAccount(ctx, accountID)
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func roundDownToFiveMinutes(t time.Time) time.Time {
	minute := (t.Minute() / 5) * 5
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
