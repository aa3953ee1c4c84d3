package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

func newPostServiceFixture(t *testing.T) (PostService, *repository.MemoryPostRepository, *repository.MemoryScheduleRepository) {
	t.Helper()
	posts := repository.NewMemoryPostRepository()
	schedule := repository.NewMemoryScheduleRepository()
	accounts := repository.NewMemoryAccountRepository()
	require.NoError(t, accounts.Create(context.Background(), &models.Account{
		ID:        "acc-1",
		Username:  "tester",
		Status:    models.AccountStatusActive,
		CreatedAt: time.Now(),
	}))
	return NewPostService(posts, schedule, accounts), posts, schedule
}

func TestCreatePost(t *testing.T) {
	svc, _, _ := newPostServiceFixture(t)

	post, err := svc.Create(context.Background(), &transfer.PostCreation{
		AccountID: "acc-1",
		Caption:   "hello",
		Media:     []string{"a.jpg"},
		Format:    models.PostFormatPhoto,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Nil(t, post.ScheduledTime)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _ := newPostServiceFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Format: models.PostFormatPhoto,
	})
	assert.ErrorContains(t, err, "media")

	_, err = svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Media: []string{"a.jpg"}, Format: "gif",
	})
	assert.ErrorContains(t, err, "format")

	_, err = svc.Create(ctx, &transfer.PostCreation{
		AccountID: "ghost", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateMergesFields(t *testing.T) {
	svc, _, _ := newPostServiceFixture(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "old", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)

	caption := "new caption"
	updated, err := svc.Update(ctx, post.ID, &transfer.PostUpdate{Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "new caption", updated.Caption)
	assert.Equal(t, []string{"a.jpg"}, updated.Media)
}

func TestUpdateRevertsScheduledToDraft(t *testing.T) {
	svc, posts, schedule := newPostServiceFixture(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "c", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)

	at := time.Now().Add(time.Hour)
	_, err = posts.MarkScheduled(ctx, post.ID, at)
	require.NoError(t, err)
	require.NoError(t, schedule.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-1", PostID: post.ID, ScheduledTime: at,
		Status: models.ScheduleStatusScheduled,
	}))

	status := models.PostStatusDraft
	updated, err := svc.Update(ctx, post.ID, &transfer.PostUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, updated.Status)
	assert.Nil(t, updated.ScheduledTime)

	entries, err := schedule.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateRejectsOtherStatusChanges(t *testing.T) {
	svc, _, _ := newPostServiceFixture(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "c", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)

	// A draft cannot be promoted through an edit; scheduling owns that.
	status := models.PostStatusPublished
	_, err = svc.Update(ctx, post.ID, &transfer.PostUpdate{Status: &status})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	status = models.PostStatusScheduled
	_, err = svc.Update(ctx, post.ID, &transfer.PostUpdate{Status: &status})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestUpdateRejectsEmptyMedia(t *testing.T) {
	svc, _, _ := newPostServiceFixture(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "c", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, post.ID, &transfer.PostUpdate{Media: []string{}})
	assert.ErrorContains(t, err, "media")
}

func TestRemoveClearsScheduleEntry(t *testing.T) {
	svc, posts, schedule := newPostServiceFixture(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "c", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)

	at := time.Now().Add(time.Hour)
	_, err = posts.MarkScheduled(ctx, post.ID, at)
	require.NoError(t, err)
	require.NoError(t, schedule.Append(ctx, &models.ScheduleEntry{
		AccountID: "acc-1", PostID: post.ID, ScheduledTime: at,
		Status: models.ScheduleStatusScheduled,
	}))

	require.NoError(t, svc.Remove(ctx, post.ID))

	_, err = posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	entries, err := schedule.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListMergesPartitions(t *testing.T) {
	svc, posts, _ := newPostServiceFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "first", Media: []string{"a.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &transfer.PostCreation{
		AccountID: "acc-1", Caption: "second", Media: []string{"b.jpg"}, Format: models.PostFormatPhoto,
	})
	require.NoError(t, err)

	_, err = posts.MarkScheduled(ctx, second.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	all, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := svc.List(ctx, "", models.PostStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)
}
