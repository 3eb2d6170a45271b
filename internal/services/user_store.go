package services

import (
	"context"
	"sync"
	"time"

	"github.com/connectro/backend/internal/models"
)

// UserStore persists user documents. Implementations return ErrNotFound,
// ErrEmailExists and ErrUsernameExists for those conditions and raw errors
// for everything else.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Update applies upd as one atomic partial write and returns the
	// document as it is after the write, without the password hash.
	Update(ctx context.Context, id string, upd *models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// MemoryUserStore keeps users in process memory.
type MemoryUserStore struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	byEmail    map[string]string // email -> userID
	byUsername map[string]string // username -> userID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:      make(map[string]*models.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrEmailExists
	}
	if _, exists := s.byUsername[user.Username]; exists {
		return ErrUsernameExists
	}

	u := *user
	s.users[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, exists := s.byEmail[email]
	if !exists {
		return nil, ErrNotFound
	}
	u := *s.users[userID]
	return &u, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, id string, upd *models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	if upd.Email != nil && *upd.Email != user.Email {
		if _, taken := s.byEmail[*upd.Email]; taken {
			return nil, ErrEmailExists
		}
	}
	if upd.Username != nil && *upd.Username != user.Username {
		if _, taken := s.byUsername[*upd.Username]; taken {
			return nil, ErrUsernameExists
		}
	}

	if upd.Email != nil {
		delete(s.byEmail, user.Email)
		user.Email = *upd.Email
		s.byEmail[user.Email] = id
	}
	if upd.Username != nil {
		delete(s.byUsername, user.Username)
		user.Username = *upd.Username
		s.byUsername[user.Username] = id
	}
	if upd.ImageURL != nil {
		user.ImageURL = *upd.ImageURL
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	user.UpdatedAt = time.Now().UTC()

	out := *user
	out.PasswordHash = ""
	return &out, nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrNotFound
	}
	delete(s.byEmail, user.Email)
	delete(s.byUsername, user.Username)
	delete(s.users, id)
	return nil
}
