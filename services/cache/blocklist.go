package cache

import (
	"strconv"
	"time"
)

// Blocklist remembers retailer hosts that recently rate-limited us. It lives
// on a shared cache service, so every process using the same backend backs
// off together.
type Blocklist struct {
	cache Service
}

// NewBlocklist creates a block list on top of a cache service
func NewBlocklist(c Service) *Blocklist {
	return &Blocklist{cache: c}
}

// Block puts a host on the list for the given duration
func (b *Blocklist) Block(host string, d time.Duration) error {
	if host == "" {
		return nil
	}
	value := []byte(strconv.Itoa(int(d.Seconds())))
	return b.cache.Set(blockKey(host), value, d)
}

// IsBlocked reports whether a host is currently on the list
func (b *Blocklist) IsBlocked(host string) bool {
	if host == "" {
		return false
	}
	_, err := b.cache.Get(blockKey(host))
	return err == nil
}

// Unblock removes a host from the list early
func (b *Blocklist) Unblock(host string) error {
	return b.cache.Delete(blockKey(host))
}

func blockKey(host string) string {
	return "ratelimit:" + host
}
