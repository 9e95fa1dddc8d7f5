package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"
)

// MockSessionRepository is an in-memory implementation of SessionRepository.
type MockSessionRepository struct {
	session *models.Session
	mu      sync.RWMutex
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Get returns the stored session.
func (r *MockSessionRepository) Get() (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.session == nil {
		return nil, fmt.Errorf("session: %w", ErrNotFound)
	}
	s := *r.session
	return &s, nil
}

// Save replaces the stored session.
func (r *MockSessionRepository) Save(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *session
	r.session = &s
	return nil
}

// Clear forgets the stored session.
func (r *MockSessionRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session = nil
	return nil
}

// MockProfileRepository is an in-memory implementation of ProfileRepository.
type MockProfileRepository struct {
	user *models.User
	mu   sync.RWMutex
}

// NewMockProfileRepository creates a new instance of MockProfileRepository.
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{}
}

// Get returns the cached profile.
func (r *MockProfileRepository) Get() (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.user == nil {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	u := *r.user
	return &u, nil
}

// Save replaces the cached profile.
func (r *MockProfileRepository) Save(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *user
	r.user = &u
	return nil
}

// Clear forgets the cached profile.
func (r *MockProfileRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.user = nil
	return nil
}
