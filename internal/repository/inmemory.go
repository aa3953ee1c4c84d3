package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// In-memory implementations of the repositories, used by tests and local
// development without Postgres. Posts live in one map per status partition;
// a single mutex makes the partition move atomic: the post is removed from
// its old partition and inserted into the new one under the same lock.

type MemoryPostRepository struct {
	mu         sync.Mutex
	partitions map[string]map[string]*models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		partitions: map[string]map[string]*models.Post{
			models.PostStatusDraft:     {},
			models.PostStatusScheduled: {},
			models.PostStatusPublished: {},
			models.PostStatusError:     {},
		},
	}
}

func clonePost(post *models.Post) *models.Post {
	copied := *post
	copied.Media = append([]string(nil), post.Media...)
	if post.ScheduledTime != nil {
		t := *post.ScheduledTime
		copied.ScheduledTime = &t
	}
	if post.PublishedAt != nil {
		t := *post.PublishedAt
		copied.PublishedAt = &t
	}
	return &copied
}

func (r *MemoryPostRepository) find(id string) (*models.Post, bool) {
	for _, partition := range r.partitions {
		if post, ok := partition[id]; ok {
			return post, true
		}
	}
	return nil, false
}

// move re-homes the post into the partition matching its status. Caller
// holds the lock.
func (r *MemoryPostRepository) move(post *models.Post, oldStatus string) {
	delete(r.partitions[oldStatus], post.ID)
	r.partitions[post.Status][post.ID] = post
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partitions[post.Status][post.ID] = clonePost(post)
	return nil
}

func (r *MemoryPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(post), nil
}

func (r *MemoryPostRepository) Update(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.find(post.ID)
	if !ok {
		return ErrNotFound
	}
	oldStatus := existing.Status
	updated := clonePost(post)
	r.move(updated, oldStatus)
	return nil
}

func (r *MemoryPostRepository) ListByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []*models.Post
	for _, post := range r.partitions[status] {
		posts = append(posts, clonePost(post))
	}
	sortByCreatedDesc(posts)
	return posts, nil
}

func (r *MemoryPostRepository) ListByAccount(ctx context.Context, accountID, status string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []*models.Post
	for partitionStatus, partition := range r.partitions {
		if status != "" && partitionStatus != status {
			continue
		}
		for _, post := range partition {
			if post.AccountID == accountID {
				posts = append(posts, clonePost(post))
			}
		}
	}
	sortByCreatedDesc(posts)
	return posts, nil
}

func sortByCreatedDesc(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func (r *MemoryPostRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, partition := range r.partitions {
		delete(partition, id)
	}
	return nil
}

func (r *MemoryPostRepository) MarkScheduled(ctx context.Context, id string, at time.Time) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	if post.Status != models.PostStatusDraft {
		return nil, ErrInvalidTransition
	}
	oldStatus := post.Status
	post.Status = models.PostStatusScheduled
	scheduled := at
	post.ScheduledTime = &scheduled
	post.ErrorMessage = ""
	r.move(post, oldStatus)
	return clonePost(post), nil
}

func (r *MemoryPostRepository) MarkPublished(ctx context.Context, id string, force bool) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	if post.Status == models.PostStatusPublished {
		return nil, ErrInvalidTransition
	}
	if post.Status != models.PostStatusScheduled && !force {
		return nil, ErrInvalidTransition
	}
	oldStatus := post.Status
	post.Status = models.PostStatusPublished
	now := time.Now()
	post.PublishedAt = &now
	post.ScheduledTime = nil
	post.ErrorMessage = ""
	r.move(post, oldStatus)
	return clonePost(post), nil
}

func (r *MemoryPostRepository) MarkDraft(ctx context.Context, id, note string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	if post.Status == models.PostStatusPublished {
		return nil, ErrInvalidTransition
	}
	oldStatus := post.Status
	post.Status = models.PostStatusDraft
	post.ScheduledTime = nil
	post.ErrorMessage = note
	r.move(post, oldStatus)
	return clonePost(post), nil
}

func (r *MemoryPostRepository) MarkError(ctx context.Context, id, message string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	if post.Status == models.PostStatusPublished {
		return nil, ErrInvalidTransition
	}
	oldStatus := post.Status
	post.Status = models.PostStatusError
	post.ErrorMessage = message
	post.ScheduledTime = nil
	r.move(post, oldStatus)
	return clonePost(post), nil
}

type MemoryScheduleRepository struct {
	mu      sync.Mutex
	entries []*models.ScheduleEntry
}

func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{}
}

func (r *MemoryScheduleRepository) Append(ctx context.Context, entry *models.ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *MemoryScheduleRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.ScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []*models.ScheduleEntry
	for _, entry := range r.entries {
		if entry.AccountID == accountID {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ScheduledTime.Before(entries[j].ScheduledTime)
	})
	return entries, nil
}

func (r *MemoryScheduleRepository) RemoveByPostID(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, entry := range r.entries {
		if entry.PostID != postID {
			kept = append(kept, entry)
		}
	}
	r.entries = kept
	return nil
}

func (r *MemoryScheduleRepository) MarkPublished(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.PostID == postID {
			entry.Status = models.ScheduleStatusPublished
		}
	}
	return nil
}

type MemoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: map[string]*models.Account{}}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *MemoryAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var accounts []*models.Account
	for _, account := range r.accounts {
		copied := *account
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *MemoryAccountRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.Status = status
	return nil
}

func (r *MemoryAccountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.LastLogin = &at
	return nil
}

func (r *MemoryAccountRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}
