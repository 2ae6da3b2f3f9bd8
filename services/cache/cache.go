package cache

import (
	"time"
)

// Service is a small TTL key-value store. The rate-limit Blocklist is built
// on top of it.
type Service interface {
	// Get retrieves a value; returns an error on a miss
	Get(key string) ([]byte, error)

	// Set stores a value with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value
	Delete(key string) error
}
