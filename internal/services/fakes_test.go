package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/storeerr"
)

// memUserRepo mimics the store, including its uniqueness constraint:
// inserting a duplicate username fails with ErrConflict the same way
// the partial unique index does.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.Username != nil {
		for _, existing := range r.users {
			if existing.Username != nil && *existing.Username == *user.Username {
				return fmt.Errorf("username already taken: %w", storeerr.ErrConflict)
			}
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storeerr.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username != nil && *user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, storeerr.ErrNotFound)
}

func (r *memUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		cp := *user
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, storeerr.ErrNotFound)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, storeerr.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

// failingUserRepo rejects every insert, for exercising upload cleanup.
type failingUserRepo struct {
	memUserRepo
}

func (r *failingUserRepo) Create(ctx context.Context, user *models.User) error {
	return fmt.Errorf("boom")
}

// memObjectStore records stored objects in memory.
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return "/uploads/profiles/" + name, nil
}

func (s *memObjectStore) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	s.removed = append(s.removed, name)
	return nil
}

func (s *memObjectStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// memMatchRepo is an in-memory MatchRepo.
type memMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{matches: make(map[string]*models.Match)}
}

func (r *memMatchRepo) Create(ctx context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *match
	r.matches[match.ID] = &cp
	return nil
}

func (r *memMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, storeerr.ErrNotFound)
	}
	cp := *match
	return &cp, nil
}

func (r *memMatchRepo) ActiveExists(ctx context.Context, userAID, userBID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.Status != models.MatchStatusPending && m.Status != models.MatchStatusAccepted {
			continue
		}
		if (m.User1ID == userAID && m.User2ID == userBID) ||
			(m.User1ID == userBID && m.User2ID == userAID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMatchRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok || match.Status != from {
		return fmt.Errorf("match %s is not %s: %w", id, from, storeerr.ErrConflict)
	}
	match.Status = to
	return nil
}

func (r *memMatchRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.matches {
		if m.Status == models.MatchStatusPending && m.MatchedAt.Before(cutoff) {
			m.Status = models.MatchStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *memMatchRepo) ListExpanded(ctx context.Context) ([]*models.MatchWithUsers, error) {
	return nil, nil
}

// jpegHeader is enough of a JPEG for content sniffing to call it an
// image.
func jpegBody(extra int) io.Reader {
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0xAB}, extra)...)
	return bytes.NewReader(data)
}
