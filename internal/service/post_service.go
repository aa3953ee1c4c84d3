package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type PostService interface {
	Create(ctx context.Context, pc *transfer.PostCreation) (*models.Post, error)
	Get(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, accountID, status string) ([]*models.Post, error)
	Update(ctx context.Context, postID string, pu *transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, postID string) error
}

type postService struct {
	posts    repository.PostRepository
	schedule repository.ScheduleRepository
	accounts repository.AccountRepository
}

func NewPostService(
	posts repository.PostRepository,
	schedule repository.ScheduleRepository,
	accounts repository.AccountRepository) PostService {
	return &postService{
		posts:    posts,
		schedule: schedule,
		accounts: accounts,
	}
}

func (s *postService) Create(ctx context.Context, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if len(pc.Media) == 0 {
		err := errors.New("post must have at least one media file")
		slog.Info(err.Error())
		return nil, err
	}
	if pc.Format != models.PostFormatPhoto && pc.Format != models.PostFormatVideo {
		err := fmt.Errorf("unknown post format: %s", pc.Format)
		slog.Info(err.Error())
		return nil, err
	}

	if _, err := s.accounts.GetByID(ctx, pc.AccountID); err != nil {
		return nil, fmt.Errorf("account %s: %w", pc.AccountID, err)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	post := &models.Post{
		ID:        id,
		AccountID: pc.AccountID,
		Caption:   pc.Caption,
		Media:     pc.Media,
		Format:    pc.Format,
		Status:    models.PostStatusDraft,
		CreatedAt: time.Now(),
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	slog.Info("post created", "post_id", id, "account_id", pc.AccountID)
	return post, nil
}

func (s *postService) Get(ctx context.Context, postID string) (*models.Post, error) {
	if postID == "" {
		return nil, errors.New("post id is not valid")
	}
	return s.posts.GetByID(ctx, postID)
}

func (s *postService) List(ctx context.Context, accountID, status string) ([]*models.Post, error) {
	if accountID != "" {
		return s.posts.ListByAccount(ctx, accountID, status)
	}
	if status != "" {
		return s.posts.ListByStatus(ctx, status)
	}
	// All posts, newest first, merged across status partitions.
	var all []*models.Post
	for _, st := range []string{models.PostStatusDraft, models.PostStatusScheduled,
		models.PostStatusPublished, models.PostStatusError} {
		posts, err := s.posts.ListByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		all = append(all, posts...)
	}
	sortPostsByCreatedDesc(all)
	return all, nil
}

// Update merges the edit onto the post. The only status change an edit may
// carry is the revert of a scheduled post back to draft, which also clears
// its scheduled time and calendar entry.
func (s *postService) Update(ctx context.Context, postID string, pu *transfer.PostUpdate) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if pu.Caption != nil {
		post.Caption = *pu.Caption
	}
	if pu.Media != nil {
		if len(pu.Media) == 0 {
			return nil, errors.New("post must have at least one media file")
		}
		post.Media = pu.Media
	}
	if pu.Format != nil {
		if *pu.Format != models.PostFormatPhoto && *pu.Format != models.PostFormatVideo {
			return nil, fmt.Errorf("unknown post format: %s", *pu.Format)
		}
		post.Format = *pu.Format
	}

	revert := false
	if pu.Status != nil && *pu.Status != post.Status {
		if post.Status != models.PostStatusScheduled || *pu.Status != models.PostStatusDraft {
			return nil, repository.ErrInvalidTransition
		}
		post.Status = models.PostStatusDraft
		post.ScheduledTime = nil
		revert = true
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	if revert {
		if err := s.schedule.RemoveByPostID(ctx, postID); err != nil {
			slog.Error("unable to remove reverted post from schedule", "post_id", postID, "error", err)
		}
	}
	return post, nil
}

func (s *postService) Remove(ctx context.Context, postID string) error {
	if postID == "" {
		return errors.New("post id is not valid")
	}
	if err := s.posts.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	if err := s.schedule.RemoveByPostID(ctx, postID); err != nil {
		slog.Error("unable to remove post from schedule", "post_id", postID, "error", err)
	}
	slog.Info("post removed", "post_id", postID)
	return nil
}

func sortPostsByCreatedDesc(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
