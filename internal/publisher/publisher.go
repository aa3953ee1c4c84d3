// Package publisher runs the background loop that detects due posts and
// pushes them through the external publishing client.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/pkg/ratelimit"
)

// Uploader is the publishing-client boundary. Implementations return the
// handle of the created media.
type Uploader interface {
	PhotoUpload(ctx context.Context, path, caption string) (string, error)
	AlbumUpload(ctx context.Context, paths []string, caption string) (string, error)
	VideoUpload(ctx context.Context, path, caption string) (string, error)
}

// AccountResolver hands out accounts and their logged-in clients.
type AccountResolver interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetClient(id string) Uploader
	Login(ctx context.Context, id string) error
}

// MediaResolver turns a media reference into an existing file path.
type MediaResolver interface {
	Resolve(filename string) (string, error)
}

type Status struct {
	Running        bool `json:"running"`
	ScheduledPosts int  `json:"scheduled_posts"`
}

type Publisher struct {
	posts    repository.PostRepository
	schedule repository.ScheduleRepository
	accounts AccountResolver
	media    MediaResolver
	limiter  *ratelimit.Limiter
	cfg      config.Publisher
	posting  config.Posting

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	now func() time.Time
}

func New(
	posts repository.PostRepository,
	schedule repository.ScheduleRepository,
	accounts AccountResolver,
	media MediaResolver,
	cfg config.Publisher,
	posting config.Posting) *Publisher {
	return &Publisher{
		posts:    posts,
		schedule: schedule,
		accounts: accounts,
		media:    media,
		limiter:  ratelimit.NewLimiter(cfg.PublishPause),
		cfg:      cfg,
		posting:  posting,
		now:      time.Now,
	}
}

// Start launches the background loop. Calling Start on a running publisher
// is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		slog.Info("publisher already running")
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
	slog.Info("publisher started", "tick", p.cfg.Tick)
}

// Stop signals the loop and waits for the in-flight tick to finish, bounded
// by a join timeout.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		slog.Warn("publisher did not stop in time")
	}
	slog.Info("publisher stopped")
}

func (p *Publisher) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Publisher) Status(ctx context.Context) (*Status, error) {
	scheduled, err := p.posts.ListByStatus(ctx, models.PostStatusScheduled)
	if err != nil {
		return nil, err
	}
	return &Status{Running: p.Running(), ScheduledPosts: len(scheduled)}, nil
}

func (p *Publisher) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.Tick)
	defer ticker.Stop()

	for {
		// A tick never throws out of the loop; per-post failures are
		// recorded on the post and the tick moves on.
		p.Tick(context.Background())

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one full scan: demote stale posts first, then publish due posts
// sequentially. Ticks never overlap; the caller is the single loop
// goroutine (or a test).
func (p *Publisher) Tick(ctx context.Context) {
	now := p.now()

	scheduled, err := p.posts.ListByStatus(ctx, models.PostStatusScheduled)
	if err != nil {
		slog.Error("unable to list scheduled posts", "error", err)
		return
	}
	if len(scheduled) == 0 {
		return
	}

	var due, stale []*models.Post

	for _, post := range scheduled {
		if post.ScheduledTime == nil {
			slog.Warn("scheduled post without scheduled time", "post_id", post.ID)
			continue
		}
		diff := now.Sub(*post.ScheduledTime)

		switch {
		case diff > p.cfg.StaleAfter:
			stale = append(stale, post)
		case diff >= -p.cfg.EarlyTolerance:
			if diff > p.cfg.LateGrace {
				slog.Warn("post is late, publishing anyway", "post_id", post.ID, "late", diff)
			}
			due = append(due, post)
		default:
			slog.Debug("post not due yet", "post_id", post.ID, "in", -diff)
		}
	}

	for _, post := range stale {
		p.demote(ctx, post)
	}

	// Oldest slot first, so a backlog drains in calendar order.
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledTime.Before(*due[j].ScheduledTime)
	})

	for _, post := range due {
		p.limiter.WaitIfNeeded()
		if err := p.publishOne(ctx, post, false); err != nil {
			if IsTimingViolation(err) {
				// Soft failure: the post stays scheduled and is retried
				// on a later tick, no error recorded.
				slog.Info("publish deferred", "post_id", post.ID, "reason", err)
				continue
			}
			slog.Error("publish failed", "post_id", post.ID, "error", err)
			if _, markErr := p.posts.MarkError(ctx, post.ID, err.Error()); markErr != nil {
				slog.Error("unable to record publish error", "post_id", post.ID, "error", markErr)
			}
		}
	}
}

// demote returns a stale post to drafts with an explanatory note and drops
// it from the calendar index. Once demoted the post is no longer scheduled,
// so a post is demoted at most once.
func (p *Publisher) demote(ctx context.Context, post *models.Post) {
	slog.Info("demoting stale post to draft", "post_id", post.ID)
	if _, err := p.posts.MarkDraft(ctx, post.ID, "missed scheduled publish window"); err != nil {
		slog.Error("unable to demote post", "post_id", post.ID, "error", err)
		return
	}
	if err := p.schedule.RemoveByPostID(ctx, post.ID); err != nil {
		slog.Error("unable to remove post from schedule index", "post_id", post.ID, "error", err)
	}
}

// PublishNow is the manual path: it skips due/stale classification and
// publishes immediately, whatever the current status, refusing only posts
// that are already published. Soft timing failures are surfaced to the
// caller without touching the post.
func (p *Publisher) PublishNow(ctx context.Context, postID string) error {
	post, err := p.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.Status == models.PostStatusPublished {
		return errors.New("post is already published")
	}

	slog.Info("manual publish", "post_id", postID, "status", post.Status)

	if err := p.publishOne(ctx, post, true); err != nil {
		if !IsTimingViolation(err) {
			if _, markErr := p.posts.MarkError(ctx, post.ID, err.Error()); markErr != nil {
				slog.Error("unable to record publish error", "post_id", post.ID, "error", markErr)
			}
		}
		return err
	}
	return nil
}

// publishOne runs the full pipeline for one post: resolve the account's
// client (one re-login attempt), enforce account pacing limits, resolve
// media files, dispatch by the actual media type, then record success.
func (p *Publisher) publishOne(ctx context.Context, post *models.Post, force bool) error {
	account, err := p.accounts.GetAccount(ctx, post.AccountID)
	if err != nil {
		return fmt.Errorf("account %s: %w", post.AccountID, err)
	}

	client := p.accounts.GetClient(post.AccountID)
	if client == nil {
		slog.Info("client missing, attempting login", "username", account.Username)
		if err := p.accounts.Login(ctx, post.AccountID); err != nil {
			return fmt.Errorf("unable to log in account @%s: %w", account.Username, err)
		}
		client = p.accounts.GetClient(post.AccountID)
		if client == nil {
			return fmt.Errorf("client for account @%s not initialized", account.Username)
		}
	}

	if err := p.checkAccountLimits(ctx, post.AccountID); err != nil {
		return err
	}

	if len(post.Media) == 0 {
		return errors.New("post has no media files")
	}

	paths := make([]string, 0, len(post.Media))
	for _, filename := range post.Media {
		path, err := p.media.Resolve(filename)
		if err != nil {
			return fmt.Errorf("media file %s: %w", filename, err)
		}
		paths = append(paths, path)
	}

	var handle string
	switch {
	case post.Format == models.PostFormatVideo && len(paths) == 1 && isVideoFile(paths[0]):
		handle, err = client.VideoUpload(ctx, paths[0], post.Caption)
	case len(paths) == 1:
		if post.Format == models.PostFormatVideo {
			// Declared video but the file isn't one; trust the file.
			slog.Warn("post declared video but file is not, publishing as photo",
				"post_id", post.ID, "file", paths[0])
		}
		handle, err = client.PhotoUpload(ctx, paths[0], post.Caption)
	default:
		handle, err = client.AlbumUpload(ctx, paths, post.Caption)
	}
	if err != nil {
		return err
	}

	if _, err := p.posts.MarkPublished(ctx, post.ID, force); err != nil {
		return fmt.Errorf("media uploaded (handle %s) but status update failed: %w", handle, err)
	}
	if err := p.schedule.MarkPublished(ctx, post.ID); err != nil {
		slog.Error("unable to mark schedule entry published", "post_id", post.ID, "error", err)
	}

	slog.Info("post published", "post_id", post.ID, "username", account.Username, "handle", handle)
	return nil
}

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".avi": {},
}

func isVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsTimingViolation reports whether a publish failure is the account's own
// pacing rule rather than a real error, and therefore safe to retry.
func IsTimingViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "too soon") || strings.Contains(message, "wait")
}
