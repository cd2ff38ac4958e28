package config

import "sync"

var (
	cacheOnce   sync.Once
	cacheConfig *CacheConfig
)

// CacheConfig selects and configures the summary cache backend.
type CacheConfig struct {
	// Backend is "file" or "redis".
	Backend   string
	Dir       string
	RedisAddr string
	RedisDB   int
}

func GetCacheConfig() *CacheConfig {
	cacheOnce.Do(func() {
		loadEnv()
		cacheConfig = &CacheConfig{
			Backend:   getEnv("CACHE_BACKEND", "file"),
			Dir:       getEnv("CACHE_DIR", "uploads/_summary_cache"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:   getEnvInt("REDIS_DB", 0),
		}
	})
	return cacheConfig
}
