package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docsage/docsage/pkg/logger"
	"github.com/docsage/docsage/pkg/storage/local"
	"github.com/docsage/docsage/pkg/storage/minio"
)

type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeMinio StorageType = "minio"
)

// Storage spools uploaded documents while they are being processed.
type Storage interface {
	// Store saves the file and returns its key.
	Store(ctx context.Context, reader io.Reader, filename string) (string, error)
	// Get opens a stored file.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored file.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes files older than the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage creates a backend by type.
func NewStorage(storageType StorageType, log logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeLocal:
		return local.GetClient(log)
	case StorageTypeMinio:
		return minio.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
