package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/marwand/hr-auth/internal/model"
	"github.com/marwand/hr-auth/internal/queue"
	"github.com/marwand/hr-auth/internal/repository"
)

// mockUserStore is an in-memory UserStore.  SetPasswordAndRevoke purges
// the linked refresh store, mirroring the production transaction.
type mockUserStore struct {
	mu     sync.Mutex
	byID   map[uint64]*model.User
	nextID uint64
	tokens *mockRefreshStore
}

func newMockUserStore(tokens *mockRefreshStore) *mockUserStore {
	return &mockUserStore{byID: map[uint64]*model.User{}, tokens: tokens}
}

func (m *mockUserStore) add(u model.User) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	u.Email = strings.ToLower(u.Email)
	cp := u
	m.byID[u.ID] = &cp
	return u
}

func (m *mockUserStore) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.byID {
		if ex.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.byID {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (m *mockUserStore) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		t := at
		u.LastLoginAt = &t
	}
	return nil
}

func (m *mockUserStore) SetPasswordAndRevoke(ctx context.Context, id uint64, hash string, mustChange bool) error {
	m.mu.Lock()
	u, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	u.MustChangePassword = mustChange
	m.mu.Unlock()
	return m.tokens.DeleteAllForUser(ctx, id)
}

// mockRefreshStore is an in-memory refresh-token ledger.  Redeem is
// delete-once under a mutex, matching the compare-and-delete contract.
type mockRefreshStore struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newMockRefreshStore() *mockRefreshStore {
	return &mockRefreshStore{rows: map[string]model.RefreshToken{}}
}

func (m *mockRefreshStore) Store(ctx context.Context, t model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.Token] = t
	return nil
}

func (m *mockRefreshStore) Redeem(ctx context.Context, token string) (model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[token]
	if !ok {
		return model.RefreshToken{}, repository.ErrTokenNotFound
	}
	delete(m.rows, token)
	if time.Now().UTC().After(t.ExpiresAt) {
		return model.RefreshToken{}, repository.ErrTokenNotFound
	}
	return t, nil
}

func (m *mockRefreshStore) DeleteAllForUser(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.rows {
		if t.UserID == userID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *mockRefreshStore) countForUser(userID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.rows {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// mockResetStore is an in-memory reset-token ledger whose Consume
// mirrors the production transaction across all three tables.
type mockResetStore struct {
	mu     sync.Mutex
	rows   map[uint64]*model.PasswordResetToken
	nextID uint64
	users  *mockUserStore
	tokens *mockRefreshStore
}

func newMockResetStore(users *mockUserStore, tokens *mockRefreshStore) *mockResetStore {
	return &mockResetStore{rows: map[uint64]*model.PasswordResetToken{}, users: users, tokens: tokens}
}

func (m *mockResetStore) Create(ctx context.Context, t *model.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *mockResetStore) FindActiveByHash(ctx context.Context, hash string) (model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.TokenHash == hash {
			if t.Used || time.Now().UTC().After(t.ExpiresAt) {
				return model.PasswordResetToken{}, repository.ErrTokenNotFound
			}
			return *t, nil
		}
	}
	return model.PasswordResetToken{}, repository.ErrTokenNotFound
}

func (m *mockResetStore) Consume(ctx context.Context, tokenID, userID uint64, newHash string) error {
	m.mu.Lock()
	t, ok := m.rows[tokenID]
	if !ok || t.Used {
		m.mu.Unlock()
		return repository.ErrTokenNotFound
	}
	t.Used = true
	m.mu.Unlock()

	m.users.mu.Lock()
	if u, ok := m.users.byID[userID]; ok {
		u.PasswordHash = newHash
		u.MustChangePassword = false
	}
	m.users.mu.Unlock()
	return m.tokens.DeleteAllForUser(ctx, userID)
}

// mockMailer captures published reset events on a channel so tests can
// wait for the detached publish goroutine.
type mockMailer struct {
	events chan queue.PasswordResetRequestedEvent
}

func newMockMailer() *mockMailer {
	return &mockMailer{events: make(chan queue.PasswordResetRequestedEvent, 4)}
}

func (m *mockMailer) PublishPasswordReset(ctx context.Context, event queue.PasswordResetRequestedEvent) error {
	m.events <- event
	return nil
}
