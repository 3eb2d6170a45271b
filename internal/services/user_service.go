package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/connectro/backend/internal/models"
)

// UserService registers accounts and checks login credentials.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
}

func NewUserService(users UserStore, hasher PasswordHasher) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
	}
}

// Register expects a normalized, validated request.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fromStore("create user", err)
	}
	return user, nil
}

// Login returns ErrInvalidPassword for both unknown emails and wrong passwords.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidPassword
		}
		return nil, storageFailure("find user", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fromStore("find user", err)
	}
	return user, nil
}

// GetOrCreate returns the user with the given id. An identity vouched for by
// an external provider and seen for the first time gets a password-less
// record keyed by that id, with a username taken from the email.
func (s *UserService) GetOrCreate(ctx context.Context, id, email string) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		return user, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	user = &models.User{
		ID:        id,
		Username:  usernameFromEmail(email),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, ErrUsernameExists) {
		user.Username = user.Username + "-" + shortID(id)
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		// A concurrent first request may have created it.
		if existing, findErr := s.users.FindByID(ctx, id); findErr == nil {
			return existing, nil
		}
		return nil, fromStore("create user", err)
	}
	return user, nil
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
