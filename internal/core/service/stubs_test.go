package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byLogin map[string]*domain.User
	findErr error
	seq     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byLogin: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byLogin[user.Login]; exists {
		return nil, domain.ErrDuplicateUser
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("u-%d", r.seq)
	r.byLogin[created.Login] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byLogin[login]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byLogin {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) remove(login string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byLogin, login)
}

func (r *stubUserRepo) rename(login, fullName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLogin[login].FullName = fullName
}

// prefixHasher is a deterministic stand-in for bcrypt. Hashes that do not
// carry the prefix are treated as malformed.
type prefixHasher struct {
	hashCalls   int
	verifyCalls int
}

const hashPrefix = "hashed:"

func (h *prefixHasher) Hash(plaintext string) (string, error) {
	h.hashCalls++
	return hashPrefix + plaintext, nil
}

func (h *prefixHasher) Verify(plaintext, hash string) (bool, error) {
	h.verifyCalls++
	if !strings.HasPrefix(hash, hashPrefix) {
		return false, fmt.Errorf("%w: missing prefix", domain.ErrHashFormat)
	}
	return hash == hashPrefix+plaintext, nil
}

type stubSessionStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	loadErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Save(_ context.Context, sid, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sid] = userID
	s.ttls[sid] = ttl
	return nil
}

func (s *stubSessionStore) UserID(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", s.loadErr
	}
	id, ok := s.data[sid]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return id, nil
}

func (s *stubSessionStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sid)
	return nil
}

func (s *stubSessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *stubSessionStore) values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	return out
}

type recordingAuditor struct {
	attempts []domain.AuthAttempt
}

func (a *recordingAuditor) Record(attempt domain.AuthAttempt) {
	a.attempts = append(a.attempts, attempt)
}

type stubProductRepo struct {
	rows      []*domain.Product
	images    map[string][]byte
	createErr error
	seq       int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{images: make(map[string][]byte)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	created := *p
	created.ID = fmt.Sprintf("p-%d", r.seq)
	created.HasImage = p.Image != nil
	if p.Image != nil {
		r.images[created.ID] = p.Image
	}
	stored := created
	stored.Image = nil
	r.rows = append([]*domain.Product{&stored}, r.rows...)
	return &created, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	return r.rows, nil
}

func (r *stubProductRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0)
	for _, p := range r.rows {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Image(_ context.Context, id string) ([]byte, error) {
	for _, p := range r.rows {
		if p.ID != id {
			continue
		}
		img, ok := r.images[id]
		if !ok {
			return nil, domain.ErrImageNotFound
		}
		return img, nil
	}
	return nil, domain.ErrProductNotFound
}

var errBoom = errors.New("boom")
