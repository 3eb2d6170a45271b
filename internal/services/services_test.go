package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/connectro/backend/internal/models"
)

// spyStore wraps MemoryUserStore with call counting and error injection.
type spyStore struct {
	*MemoryUserStore
	finds     int
	updates   int
	findErr   error
	updateErr error
	lastWrite *models.UserUpdate
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryUserStore: NewMemoryUserStore()}
}

func (s *spyStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.finds++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.MemoryUserStore.FindByID(ctx, id)
}

func (s *spyStore) Update(ctx context.Context, id string, upd *models.UserUpdate) (*models.User, error) {
	s.updates++
	s.lastWrite = upd
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.MemoryUserStore.Update(ctx, id, upd)
}

type putCall struct {
	key         string
	contentType string
	body        []byte
}

// fakeObjectStore records uploads and returns a URL under a fixed host.
type fakeObjectStore struct {
	calls     []putCall
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.calls = append(f.calls, putCall{key: key, contentType: contentType, body: body})
	return "https://connectro.s3.amazonaws.com/" + key, nil
}

var errBoom = errors.New("boom")

func testHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func seedUser(t *testing.T, store UserStore, h PasswordHasher, id, password string, mutate ...func(*models.User)) *models.User {
	t.Helper()
	hash, err := h.Hash(password)
	require.NoError(t, err)
	u := &models.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        id + "@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, store.Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }
