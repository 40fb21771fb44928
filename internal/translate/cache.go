package translate

import (
	"crypto/sha256"
	"errors"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Cache keeps model answers keyed by a hash of model and prompt. A nil
// *Cache is valid and caches nothing.
type Cache struct {
	cache      *freecache.Cache
	ttlSeconds int
}

// NewCache returns nil when sizeMB is not positive.
func NewCache(sizeMB, ttlSeconds int) *Cache {
	if sizeMB <= 0 {
		return nil
	}
	return &Cache{
		// freecache enforces a 512KB minimum
		cache:      freecache.NewCache(sizeMB * megabyte),
		ttlSeconds: ttlSeconds,
	}
}

func cacheKey(model, prompt string) []byte {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return sum[:]
}

func (c *Cache) Get(model, prompt string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.cache.Get(cacheKey(model, prompt))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("translation cache get: %s", err)
		}
		return "", false
	}
	return string(val), true
}

func (c *Cache) Set(model, prompt, answer string) {
	if c == nil {
		return
	}
	if err := c.cache.Set(cacheKey(model, prompt), []byte(answer), c.ttlSeconds); err != nil {
		// answers larger than 1/1024 of the cache are rejected
		log.Debugf("translation cache set: %s", err)
	}
}

func (c *Cache) EntryCount() int64 {
	if c == nil {
		return 0
	}
	return c.cache.EntryCount()
}
