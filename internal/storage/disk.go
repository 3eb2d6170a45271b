package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/connectro/backend/internal/config"
)

// DiskClient stores objects under a local directory that the server exposes
// at PublicBaseURL. Intended for development and single-node deployments.
type DiskClient struct {
	root          string
	publicBaseURL string
}

func NewDiskClient(cfg config.DiskConfig) (*DiskClient, error) {
	if strings.TrimSpace(cfg.UploadDir) == "" {
		return nil, errors.New("upload dir is required")
	}
	return &DiskClient{
		root:          cfg.UploadDir,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// EnsureBucket creates the upload directory if it doesn't exist.
func (d *DiskClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(d.root, 0755)
}

// Put writes to a temp file first, then renames it over the target.
func (d *DiskClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	dst, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save file: %w", err)
	}

	return os.Rename(tempFile, path)
}

func (d *DiskClient) Delete(ctx context.Context, key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (d *DiskClient) PublicURL(key string) string {
	return joinURL(d.publicBaseURL, key)
}

// Bucket returns the upload directory.
func (d *DiskClient) Bucket() string {
	return d.root
}

// Root is the directory served for public reads.
func (d *DiskClient) Root() string {
	return d.root
}

func (d *DiskClient) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}
