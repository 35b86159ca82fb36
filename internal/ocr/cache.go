package ocr

import (
	"crypto/md5"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache memoizes OCR results per (frame, engine, language) so a static
// screen never pays for repeated recognition within the TTL window.
// Entries expire lazily and the LRU bound keeps memory flat under
// long sessions with a fast-changing region.
type Cache struct {
	lru *expirable.LRU[string, Result]
}

// NewCache creates a cache holding up to size entries for up to ttl each.
func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, Result](size, nil, ttl)}
}

// Key derives the cache key from raw image bytes, engine, and language.
func Key(image []byte, engine EngineID, lang string) string {
	sum := md5.Sum(image)
	return fmt.Sprintf("%x:%s:%s", sum, engine, lang)
}

// GetOrCompute returns the cached result for key if present and fresh,
// otherwise invokes fn. Failed computations are never stored, so the
// next call retries.
func (c *Cache) GetOrCompute(key string, fn func() (Result, error)) (Result, error) {
	if res, ok := c.lru.Get(key); ok {
		return res, nil
	}
	res, err := fn()
	if err != nil {
		return Result{}, err
	}
	c.lru.Add(key, res)
	return res, nil
}

// Purge drops all entries.
func (c *Cache) Purge() {
	c.lru.Purge()
}
