package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrInvalidCredential = errors.New("current password is incorrect")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrEmailExists       = errors.New("email already registered")
	ErrUsernameExists    = errors.New("username already taken")
	ErrInvalidImage      = errors.New("invalid image data")
	ErrMediaUploadFailed = errors.New("failed to upload image")
	ErrStorageFailure    = errors.New("storage failure")
)

// storageFailure tags a store error so callers can match ErrStorageFailure
// while the cause stays available for logging.
func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// fromStore passes through the store's domain errors and tags the rest.
func fromStore(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrUsernameExists):
		return err
	default:
		return storageFailure(op, err)
	}
}
