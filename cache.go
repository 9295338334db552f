package pcre

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	pattern string
	flags   string
}

// Cache is a bounded set of compiled patterns keyed by pattern and flags.
// Patterns pushed out by newer ones, or dropped by Purge, are released.
//
// A Cache is safe for concurrent use. Each pattern is lent to one callback
// at a time through Do, so the single-owner rule of Pattern still holds.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache[cacheKey, *Pattern]
	config Config
	log    *slog.Logger
}

// NewCache creates a cache holding at most size patterns compiled with
// config.
func NewCache(size int, config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &Cache{config: config, log: config.logger()}
	l, err := lru.NewWithEvict(size, c.evict)
	if err != nil {
		return nil, &ConfigError{Field: "size", Message: err.Error()}
	}
	c.lru = l
	return c, nil
}

func (c *Cache) evict(key cacheKey, p *Pattern) {
	if err := p.Release(); err != nil {
		c.log.Warn("Cached pattern already released", "pattern", key.pattern, "error", err)
		return
	}
	c.log.Debug("Pattern evicted from cache", "pattern", key.pattern, "flags", key.flags)
}

// Do compiles pattern with flags, or reuses a cached copy, and calls fn with
// it. fn must not retain the pattern or release it.
//
// Example:
//
//	err := cache.Do(`\d+`, "", func(re *pcre.Pattern) error {
//	    m, err := re.Match(line)
//	    ...
//	})
func (c *Cache) Do(pattern, flags string, fn func(*Pattern) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{pattern: pattern, flags: flags}
	p, ok := c.lru.Get(key)
	if !ok {
		var err error
		p, err = CompileWithConfig(pattern, flags, c.config)
		if err != nil {
			return err
		}
		c.lru.Add(key, p)
	}
	return fn(p)
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge releases and drops every cached pattern.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Close is Purge; it lets a Cache be used as an io.Closer.
func (c *Cache) Close() error {
	c.Purge()
	return nil
}
