package storage

import (
	"context"
	"fmt"

	"github.com/connectro/backend/internal/config"
)

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case config.StorageS3:
		backend, err = NewS3Client(ctx, cfg.S3)
	case config.StorageGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	case config.StorageMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case config.StorageDisk:
		backend, err = NewDiskClient(cfg.Disk)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	return backend, nil
}
