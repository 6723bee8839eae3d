package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/picshare/picshare-go/internal/model"
	"github.com/picshare/picshare-go/internal/repository"
)

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[int64]*model.User
	nextID    int64
	createErr error
	// existsOverride forces Exists* to report false, simulating a lost race.
	existsOverride bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}
	f.nextID++
	user.ID = f.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.existsOverride {
		return false, nil
	}
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if f.existsOverride {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeTokenStore struct {
	mu      sync.Mutex
	tokens  map[int64]*model.AccessToken
	nextID  int64
	touched map[int64]time.Time
	lookups int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[int64]*model.AccessToken{}, touched: map[int64]time.Time{}}
}

func (f *fakeTokenStore) Create(_ context.Context, token *model.AccessToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	token.ID = f.nextID
	stored := *token
	f.tokens[token.ID] = &stored
	return nil
}

func (f *fakeTokenStore) GetByID(_ context.Context, id int64) (*model.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	t, ok := f.tokens[id]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTokenStore) GetByHash(_ context.Context, hash string) (*model.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for _, t := range f.tokens {
		if t.TokenHash == hash {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (f *fakeTokenStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, id)
	return nil
}

func (f *fakeTokenStore) TouchLastUsed(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[id] = at
	return nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

// pausingTokenStore blocks the first GetByID after the row has been read,
// until release is closed.
type pausingTokenStore struct {
	*fakeTokenStore
	once    sync.Once
	paused  chan struct{}
	release chan struct{}
}

func newPausingTokenStore() *pausingTokenStore {
	return &pausingTokenStore{
		fakeTokenStore: newFakeTokenStore(),
		paused:         make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (p *pausingTokenStore) GetByID(ctx context.Context, id int64) (*model.AccessToken, error) {
	token, err := p.fakeTokenStore.GetByID(ctx, id)
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.paused)
		<-p.release
	}
	return token, err
}

type fakePostStore struct {
	posts []model.Post
}

func (f *fakePostStore) sorted(filter func(model.Post) bool) []model.Post {
	var out []model.Post
	for _, p := range f.posts {
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func pageOf(posts []model.Post, limit, offset int) []model.Post {
	if offset >= len(posts) {
		return []model.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func (f *fakePostStore) List(_ context.Context, limit, offset int) ([]model.Post, error) {
	return pageOf(f.sorted(nil), limit, offset), nil
}

func (f *fakePostStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.posts)), nil
}

func (f *fakePostStore) ListByUser(_ context.Context, userID int64, limit, offset int) ([]model.Post, error) {
	return pageOf(f.sorted(func(p model.Post) bool { return p.UserID == userID }), limit, offset), nil
}

func (f *fakePostStore) CountByUser(_ context.Context, userID int64) (int64, error) {
	return int64(len(f.sorted(func(p model.Post) bool { return p.UserID == userID }))), nil
}

type fakeCache struct {
	mu        sync.Mutex
	entries   map[string]*model.Identity
	deleteErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*model.Identity{}}
}

func (f *fakeCache) Get(_ context.Context, hash string) (*model.Identity, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.entries[hash]
	return id, ok, nil
}

func (f *fakeCache) Set(_ context.Context, hash string, identity *model.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[hash] = identity
	return nil
}

func (f *fakeCache) Delete(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, hash)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEvents) RecordAuthEvent(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEvents) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}
