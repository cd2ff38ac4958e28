package config

import "sync"

var (
	storageOnce   sync.Once
	storageConfig *StorageConfig
)

// StorageConfig configures upload spooling.
type StorageConfig struct {
	// Backend is "local" or "minio".
	Backend   string
	UploadDir string
}

func GetStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		loadEnv()
		storageConfig = &StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		}
	})
	return storageConfig
}
