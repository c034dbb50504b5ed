package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores short-lived lookups: robots.txt bodies and provider health.
// Nothing analyzed from a document is ever cached.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key, e.g. Key("robots", "example.com")
func Key(kind, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "clausewise:v1:" + kind + ":" + hex.EncodeToString(hash[:16])
}
