package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"sort"
	"strings"

	"github.com/connectro/backend/internal/logging"
)

// InlineImagePrefix marks an imageUrl value that carries the image itself.
const InlineImagePrefix = "data:image/"

const profileImageDir = "profile_images"

// ObjectStore is the slice of the object store the uploader needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// InlineImage is a parsed data URL. Payload is still base64 text.
type InlineImage struct {
	ContentType string
	Ext         string
	Payload     string
}

var imageTypes = map[string]struct {
	contentType string
	ext         string
}{
	"image/png":  {"image/png", ".png"},
	"image/jpeg": {"image/jpeg", ".jpg"},
	"image/jpg":  {"image/jpeg", ".jpg"},
	"image/gif":  {"image/gif", ".gif"},
	"image/webp": {"image/webp", ".webp"},
}

// IsInlineImage reports whether s should be treated as inline image data
// rather than as a URL.
func IsInlineImage(s string) bool {
	return strings.HasPrefix(s, InlineImagePrefix)
}

// ParseInlineImage splits "data:image/png;base64,<payload>" into its parts.
func ParseInlineImage(s string) (*InlineImage, error) {
	if !IsInlineImage(s) {
		return nil, ErrInvalidImage
	}
	meta, payload, found := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !found || payload == "" {
		return nil, ErrInvalidImage
	}

	params := strings.Split(meta, ";")
	t, ok := imageTypes[strings.ToLower(strings.TrimSpace(params[0]))]
	if !ok {
		return nil, ErrInvalidImage
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return nil, ErrInvalidImage
	}

	return &InlineImage{ContentType: t.contentType, Ext: t.ext, Payload: payload}, nil
}

// DecodeBase64 decodes a base64 payload, with or without padding.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return data, nil
}

// ProfileImageKey is the object key of a user's profile image.
func ProfileImageKey(userID, ext string) string {
	return profileImageDir + "/" + userID + ext
}

type MediaService struct {
	store ObjectStore
	log   logging.Logger
}

func NewMediaService(store ObjectStore, log logging.Logger) *MediaService {
	if log == nil {
		log = logging.Discard()
	}
	return &MediaService{store: store, log: log}
}

// Upload writes data at key with public-read visibility and returns its URL.
// Store errors are logged and reported as ErrMediaUploadFailed only.
func (s *MediaService) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		s.log.Error(ctx, "object store upload failed", "key", key, "error", err)
		return "", ErrMediaUploadFailed
	}
	return url, nil
}

// RemoveProfileImages deletes every profile image key the user could own.
// Failures are logged and counted, never returned.
func (s *MediaService) RemoveProfileImages(ctx context.Context, userID string) int {
	failed := 0
	for _, ext := range profileImageExts() {
		key := ProfileImageKey(userID, ext)
		if err := s.store.Delete(ctx, key); err != nil {
			failed++
			s.log.Warn(ctx, "object store delete failed", "key", key, "error", err)
		}
	}
	return failed
}

func profileImageExts() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, t := range imageTypes {
		if !seen[t.ext] {
			seen[t.ext] = true
			exts = append(exts, t.ext)
		}
	}
	sort.Strings(exts)
	return exts
}
