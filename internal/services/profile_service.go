package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/connectro/backend/internal/logging"
	"github.com/connectro/backend/internal/models"
)

// ProfileService reads and updates the authenticated user's own profile.
type ProfileService struct {
	users  UserStore
	media  *MediaService
	hasher PasswordHasher
	log    logging.Logger
}

func NewProfileService(users UserStore, media *MediaService, hasher PasswordHasher, log logging.Logger) *ProfileService {
	if log == nil {
		log = logging.Discard()
	}
	return &ProfileService{
		users:  users,
		media:  media,
		hasher: hasher,
		log:    log,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore("find user", err)
	}
	return user.Profile(), nil
}

// UpdateProfile applies a partial update in four ordered steps: resolve the
// image (uploading inline data), verify and rotate the password when both
// passwords are given, write every supplied field in a single update, and
// return the stored result. Nothing is written if an earlier step fails.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	imageURL, err := s.resolveImage(ctx, userID, req.ImageURL)
	if err != nil {
		return nil, err
	}

	upd := &models.UserUpdate{ImageURL: imageURL}

	// Rotation needs both passwords; with only one of them it is skipped.
	if req.RotatesPassword() {
		hash, err := s.rotatePassword(ctx, userID, *req.CurrentPassword, *req.NewPassword)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		upd.Username = &username
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		upd.Email = &email
	}

	// Nothing to write: answer with the current record.
	if upd.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		return nil, fromStore("update user", err)
	}

	s.log.Info(ctx, "profile updated",
		"user", userID,
		"image", imageURL != nil,
		"password", upd.PasswordHash != nil,
	)
	return user.Profile(), nil
}

// resolveImage returns the image reference to store: nil leaves the current
// one untouched, inline data is uploaded, anything else is stored as given.
func (s *ProfileService) resolveImage(ctx context.Context, userID string, imageURL *string) (*string, error) {
	if imageURL == nil || !IsInlineImage(*imageURL) {
		return imageURL, nil
	}

	img, err := ParseInlineImage(*imageURL)
	if err != nil {
		return nil, err
	}
	data, err := DecodeBase64(img.Payload)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, data, ProfileImageKey(userID, img.Ext), img.ContentType)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *ProfileService) rotatePassword(ctx context.Context, userID, current, next string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fromStore("find user", err)
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return "", ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
