package ocr

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the cache when no explicit size is given.
const DefaultCacheSize = 128

type cacheEntry struct {
	result Result
	engine string
}

// Cache is a size-bounded LRU of recognition results keyed by image
// fingerprint and language hint. It is safe for concurrent use.
type Cache struct {
	inner *lru.Cache[string, cacheEntry]
}

// NewCache creates a cache holding at most size entries. Sizes below
// one fall back to DefaultCacheSize.
func NewCache(size int) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	// lru.New only errors on a non-positive size, which is
	// normalized above.
	inner, _ := lru.New[string, cacheEntry](size)
	return &Cache{inner: inner}
}

// Get looks up a cached result for the image and language hint.
func (c *Cache) Get(image []byte, lang string) (*Result, string, bool) {
	entry, ok := c.inner.Get(cacheKey(image, lang))
	if !ok {
		return nil, "", false
	}
	res := entry.result
	return &res, entry.engine, true
}

// Add stores a recognition result, evicting the least recently used
// entry when the cache is full.
func (c *Cache) Add(image []byte, lang, engine string, res *Result) {
	c.inner.Add(cacheKey(image, lang), cacheEntry{result: *res, engine: engine})
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	return c.inner.Len()
}

func cacheKey(image []byte, lang string) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:]) + ":" + lang
}
