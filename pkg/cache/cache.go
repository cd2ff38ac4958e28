// Package cache provides a small durable KV store for JSON-serializable
// records. Two backends exist: a local file backend and redis.
package cache

import "context"

// Cache stores one JSON document per key. Get reports whether the key
// existed; a missing key is not an error.
type Cache interface {
	Put(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
}
