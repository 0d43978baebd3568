// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu    sync.RWMutex
	users map[int64]*User
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users: make(map[int64]*User),
	}
}

// UpsertUser stores a user, updating the username if already known.
func (m *MockStore) UpsertUser(_ context.Context, id int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		u.Username = username
		return nil
	}
	m.users[id] = &User{ID: id, Username: username, CreatedAt: time.Now().UTC()}
	return nil
}

// SetLanguage stores the user's language, creating the user if needed.
func (m *MockStore) SetLanguage(_ context.Context, id int64, languageCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		u.LanguageCode = languageCode
		return nil
	}
	m.users[id] = &User{ID: id, LanguageCode: languageCode, CreatedAt: time.Now().UTC()}
	return nil
}

// GetLanguage returns the stored language or ErrNotFound.
func (m *MockStore) GetLanguage(_ context.Context, id int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok || u.LanguageCode == "" {
		return "", ErrNotFound
	}
	return u.LanguageCode, nil
}

// ListUsers returns all users ordered by creation time.
func (m *MockStore) ListUsers(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
