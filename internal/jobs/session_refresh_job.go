package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

// SessionRefreshJob re-logs active accounts whose sessions are getting old,
// so the publish loop rarely hits an expired client mid-publish.
type SessionRefreshJob struct {
	accounts repository.AccountRepository
	svc      service.AccountService
	maxAge   time.Duration
}

func NewSessionRefreshJob(accounts repository.AccountRepository, svc service.AccountService) *SessionRefreshJob {
	return &SessionRefreshJob{
		accounts: accounts,
		svc:      svc,
		maxAge:   12 * time.Hour,
	}
}

func (j *SessionRefreshJob) RefreshSessions() {
	ctx := context.Background()

	accounts, err := j.accounts.List(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	cutoff := time.Now().Add(-j.maxAge)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for _, acc := range accounts {
		if acc.Status != models.AccountStatusActive {
			continue
		}
		if acc.LastLogin != nil && acc.LastLogin.After(cutoff) {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.Account) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.svc.Login(ctx, acc.ID); err != nil {
				slog.Warn("session refresh failed", "username", acc.Username, "error", err)
			}
		}(acc)
	}
	wg.Wait()
}
