package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/postpilot/internal/models"
)

func draftPost(id, accountID string) *models.Post {
	return &models.Post{
		ID:        id,
		AccountID: accountID,
		Caption:   "caption",
		Media:     []string{"a.jpg"},
		Format:    models.PostFormatPhoto,
		Status:    models.PostStatusDraft,
		CreatedAt: time.Now(),
	}
}

func TestPostLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	at := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	post, err := repo.MarkScheduled(ctx, "p1", at)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	require.NotNil(t, post.ScheduledTime)
	assert.True(t, at.Equal(*post.ScheduledTime))
	assert.Nil(t, post.PublishedAt)

	post, err = repo.MarkPublished(ctx, "p1", false)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.NotNil(t, post.PublishedAt)
	assert.Nil(t, post.ScheduledTime)

	// Published is terminal.
	_, err = repo.MarkPublished(ctx, "p1", false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = repo.MarkPublished(ctx, "p1", true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = repo.MarkScheduled(ctx, "p1", at)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = repo.MarkDraft(ctx, "p1", "note")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = repo.MarkError(ctx, "p1", "boom")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkPublishedRequiresScheduledUnlessForced(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	_, err := repo.MarkPublished(ctx, "p1", false)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	post, err := repo.MarkPublished(ctx, "p1", true)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
}

func TestMarkDraftKeepsNote(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	_, err := repo.MarkScheduled(ctx, "p1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	post, err := repo.MarkDraft(ctx, "p1", "missed scheduled publish window")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Nil(t, post.ScheduledTime)
	assert.Equal(t, "missed scheduled publish window", post.ErrorMessage)

	// Rescheduling clears the note.
	post, err = repo.MarkScheduled(ctx, "p1", time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, post.ErrorMessage)
}

func TestMarkErrorClearsScheduledTime(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	_, err := repo.MarkScheduled(ctx, "p1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	post, err := repo.MarkError(ctx, "p1", "upload failed")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusError, post.Status)
	assert.Equal(t, "upload failed", post.ErrorMessage)
	assert.Nil(t, post.ScheduledTime)

	// An errored post is not a draft, so it cannot be rescheduled directly.
	_, err = repo.MarkScheduled(ctx, "p1", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionsMoveBetweenPartitions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	_, err := repo.MarkScheduled(ctx, "p1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	drafts, err := repo.ListByStatus(ctx, models.PostStatusDraft)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	scheduled, err := repo.ListByStatus(ctx, models.PostStatusScheduled)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "p1", scheduled[0].ID)
}

func TestUnknownPost(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	_, err := repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.MarkScheduled(ctx, "nope", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.MarkPublished(ctx, "nope", true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, draftPost("nope", "acc-1")), ErrNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	require.NoError(t, repo.Remove(ctx, "p1"))
	require.NoError(t, repo.Remove(ctx, "p1"))

	_, err := repo.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByAccountFiltersStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))
	require.NoError(t, repo.Create(ctx, draftPost("p2", "acc-1")))
	require.NoError(t, repo.Create(ctx, draftPost("p3", "acc-2")))

	_, err := repo.MarkScheduled(ctx, "p2", time.Now().Add(time.Hour))
	require.NoError(t, err)

	all, err := repo.ListByAccount(ctx, "acc-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := repo.ListByAccount(ctx, "acc-1", models.PostStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "p1", drafts[0].ID)
}

func TestGetByIDReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	require.NoError(t, repo.Create(ctx, draftPost("p1", "acc-1")))

	post, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	post.Caption = "mutated"
	post.Media[0] = "mutated.jpg"

	fresh, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "caption", fresh.Caption)
	assert.Equal(t, "a.jpg", fresh.Media[0])
}

func TestScheduleEntriesSortedByTime(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScheduleRepository()

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-1", PostID: "p2", ScheduledTime: base.Add(5 * time.Hour),
		Status: models.ScheduleStatusScheduled,
	}))
	require.NoError(t, repo.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-1", PostID: "p1", ScheduledTime: base,
		Status: models.ScheduleStatusScheduled,
	}))
	require.NoError(t, repo.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-2", PostID: "p3", ScheduledTime: base.Add(time.Hour),
		Status: models.ScheduleStatusScheduled,
	}))

	entries, err := repo.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].PostID)
	assert.Equal(t, "p2", entries[1].PostID)
}

func TestScheduleRemoveAndMarkPublished(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScheduleRepository()

	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-1", PostID: "p1", ScheduledTime: at,
		Status: models.ScheduleStatusScheduled,
	}))
	require.NoError(t, repo.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-1", PostID: "p2", ScheduledTime: at.Add(time.Hour),
		Status: models.ScheduleStatusScheduled,
	}))

	require.NoError(t, repo.MarkPublished(ctx, "p1"))
	require.NoError(t, repo.RemoveByPostID(ctx, "p2"))

	entries, err := repo.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p1", entries[0].PostID)
	assert.Equal(t, models.ScheduleStatusPublished, entries[0].Status)
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()

	account := &models.Account{
		ID:          "acc-1",
		Username:    "tester",
		Password:    "encrypted",
		Status:      models.AccountStatusInactive,
		PostsPerDay: 3,
		Format:      models.PostFormatPhoto,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.UpdateStatus(ctx, "acc-1", models.AccountStatusActive))
	at := time.Now()
	require.NoError(t, repo.UpdateLastLogin(ctx, "acc-1", at))

	got, err := repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusActive, got.Status)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	require.NoError(t, repo.Remove(ctx, "acc-1"))
	_, err = repo.GetByID(ctx, "acc-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "acc-1", models.AccountStatusActive), ErrNotFound)
}
