package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/instagram"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/publisher"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type AccountService interface {
	Create(ctx context.Context, ac *transfer.AccountCreation) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Remove(ctx context.Context, accountID string) error
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	GetClient(accountID string) publisher.Uploader
	Login(ctx context.Context, accountID string) error
	Logout(ctx context.Context, accountID string) error
	LoginAll(ctx context.Context) (active, total int)
}

type accountService struct {
	cfg      config.Config
	accounts repository.AccountRepository

	mu      sync.Mutex
	clients map[string]*instagram.Client
}

func NewAccountService(cfg config.Config, accounts repository.AccountRepository) AccountService {
	return &accountService{
		cfg:      cfg,
		accounts: accounts,
		clients:  make(map[string]*instagram.Client),
	}
}

func (s *accountService) Create(ctx context.Context, ac *transfer.AccountCreation) (*models.Account, error) {
	if ac.Username == "" || ac.Password == "" {
		err := errors.New("username and password are required")
		slog.Info(err.Error())
		return nil, err
	}
	if ac.PostsPerDay <= 0 {
		ac.PostsPerDay = s.cfg.Posting.DefaultPerDay
	}
	if ac.Format == "" {
		ac.Format = models.PostFormatPhoto
	}

	encrypted, err := utils.Encrypt([]byte(ac.Password), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	account := &models.Account{
		ID:          id,
		Username:    ac.Username,
		Password:    encrypted,
		Status:      models.AccountStatusInactive,
		PostsPerDay: ac.PostsPerDay,
		Format:      ac.Format,
		CreatedAt:   time.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	slog.Info("account created", "account_id", id, "username", ac.Username)
	return account, nil
}

func (s *accountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.List(ctx)
}

func (s *accountService) Remove(ctx context.Context, accountID string) error {
	s.mu.Lock()
	delete(s.clients, accountID)
	s.mu.Unlock()
	return s.accounts.Remove(ctx, accountID)
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// GetClient returns the logged-in client for the account, or nil if none is
// cached. The caller decides whether to attempt a login.
func (s *accountService) GetClient(accountID string) publisher.Uploader {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[accountID]
	if !ok {
		return nil
	}
	return client
}

func (s *accountService) Login(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	password, err := utils.Decrypt(account.Password, []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("unable to decrypt account password: %w", err)
	}

	if err := s.accounts.UpdateStatus(ctx, accountID, models.AccountStatusLoggingIn); err != nil {
		slog.Info(err.Error())
	}

	client := instagram.NewClient("")
	if err := client.Login(ctx, account.Username, password); err != nil {
		if statusErr := s.accounts.UpdateStatus(ctx, accountID, models.AccountStatusError); statusErr != nil {
			slog.Info(statusErr.Error())
		}
		return fmt.Errorf("login failed for @%s: %w", account.Username, err)
	}

	s.mu.Lock()
	s.clients[accountID] = client
	s.mu.Unlock()

	if err := s.accounts.UpdateStatus(ctx, accountID, models.AccountStatusActive); err != nil {
		slog.Info(err.Error())
	}
	if err := s.accounts.UpdateLastLogin(ctx, accountID, time.Now()); err != nil {
		slog.Info(err.Error())
	}

	slog.Info("account logged in", "username", account.Username)
	return nil
}

func (s *accountService) Logout(ctx context.Context, accountID string) error {
	s.mu.Lock()
	delete(s.clients, accountID)
	s.mu.Unlock()
	return s.accounts.UpdateStatus(ctx, accountID, models.AccountStatusInactive)
}

// LoginAll logs every account in concurrently, one goroutine per account,
// and reports the aggregate tally once all attempts finished.
func (s *accountService) LoginAll(ctx context.Context) (int, int) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		slog.Error("unable to list accounts for auto login", "error", err)
		return 0, 0
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	active := 0

	for _, account := range accounts {
		wg.Add(1)
		go func(account *models.Account) {
			defer wg.Done()
			if err := s.Login(ctx, account.ID); err != nil {
				slog.Warn("auto login failed", "username", account.Username, "error", err)
				return
			}
			mu.Lock()
			active++
			mu.Unlock()
		}(account)
	}
	wg.Wait()

	slog.Info("auto login finished", "active", active, "total", len(accounts))
	return active, len(accounts)
}
