package services

import (
	"context"

	"github.com/connectro/backend/internal/logging"
)

// AccountService removes a user and the media stored for them.
type AccountService struct {
	users UserStore
	media *MediaService
	log   logging.Logger
}

func NewAccountService(users UserStore, media *MediaService, log logging.Logger) *AccountService {
	if log == nil {
		log = logging.Discard()
	}
	return &AccountService{users: users, media: media, log: log}
}

// DeleteAccount deletes the user record first, then its profile images on a
// best-effort basis. A failed image delete does not fail the call.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fromStore("delete user", err)
	}

	failed := s.media.RemoveProfileImages(ctx, userID)
	s.log.Info(ctx, "account deleted", "user", userID, "image_delete_failures", failed)
	return nil
}
