// Package cache holds short lived in-memory caches for expensive listings
package cache

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-while/go-advice/internal/models"
)

// CachedKeyWords holds one cached popular keywords listing
type CachedKeyWords struct {
	KeyWords  []*models.KeyWord
	CreatedAt time.Time
	LastUsed  time.Time
}

// KeyWordCache caches GetTopKeyWords results per limit.
// The query aggregates all keyword links, so it is not run on every page view.
type KeyWordCache struct {
	cache       map[int]*CachedKeyWords
	mutex       sync.RWMutex
	maxEntries  int           // Maximum number of cached limits
	maxAge      time.Duration // Maximum age of entries
	cleanupTick time.Duration // How often to run cleanup
	stopCleanup chan struct{}
	stopOnce    sync.Once
	countermux  sync.RWMutex
	hits        int64
	misses      int64
	Debug       bool
}

// NewKeyWordCache creates a cache and starts its cleanup goroutine.
// Call Stop when done.
func NewKeyWordCache(maxEntries int, maxAge time.Duration) *KeyWordCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	kc := &KeyWordCache{
		cache:       make(map[int]*CachedKeyWords),
		maxEntries:  maxEntries,
		maxAge:      maxAge,
		cleanupTick: max(maxAge, time.Second),
		stopCleanup: make(chan struct{}),
	}
	go kc.cleanup()
	return kc
}

// Get returns the cached listing for limit if it is fresh
func (kc *KeyWordCache) Get(limit int) ([]*models.KeyWord, bool) {
	kc.mutex.Lock()
	entry, exists := kc.cache[limit]
	if exists && time.Since(entry.CreatedAt) > kc.maxAge {
		delete(kc.cache, limit)
		exists = false
	}
	if exists {
		entry.LastUsed = time.Now()
	}
	kc.mutex.Unlock()

	kc.countermux.Lock()
	if exists {
		kc.hits++
	} else {
		kc.misses++
	}
	kc.countermux.Unlock()

	if !exists {
		return nil, false
	}
	if kc.Debug {
		log.Printf("[CACHE]: keyword cache hit for limit %d (%d keywords)", limit, len(entry.KeyWords))
	}
	return entry.KeyWords, true
}

// Set stores a listing for limit
func (kc *KeyWordCache) Set(limit int, keywords []*models.KeyWord) {
	now := time.Now()
	kc.mutex.Lock()
	defer kc.mutex.Unlock()
	kc.cache[limit] = &CachedKeyWords{KeyWords: keywords, CreatedAt: now, LastUsed: now}
	kc.evictIfNeeded()
}

// GetOrLoad returns the cached listing or calls load and caches its result.
// Errors are not cached.
func (kc *KeyWordCache) GetOrLoad(limit int, load func(limit int) ([]*models.KeyWord, error)) ([]*models.KeyWord, error) {
	if keywords, ok := kc.Get(limit); ok {
		return keywords, nil
	}
	keywords, err := load(limit)
	if err != nil {
		return nil, err
	}
	kc.Set(limit, keywords)
	return keywords, nil
}

// Clear removes all cache entries
func (kc *KeyWordCache) Clear() {
	kc.mutex.Lock()
	count := len(kc.cache)
	kc.cache = make(map[int]*CachedKeyWords)
	kc.mutex.Unlock()
	if kc.Debug {
		log.Printf("[CACHE]: cleared keyword cache (%d entries)", count)
	}
}

// Len returns the number of cached listings, fresh or not
func (kc *KeyWordCache) Len() int {
	kc.mutex.RLock()
	defer kc.mutex.RUnlock()
	return len(kc.cache)
}

// GetStats returns cache statistics
func (kc *KeyWordCache) GetStats() map[string]interface{} {
	entryCount := kc.Len()

	kc.countermux.RLock()
	hits := kc.hits
	misses := kc.misses
	kc.countermux.RUnlock()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     entryCount,
		"max_entries": kc.maxEntries,
		"max_age":     kc.maxAge.String(),
		"hits":        hits,
		"misses":      misses,
		"hit_rate":    fmt.Sprintf("%.1f%%", hitRate),
	}
}

// evictIfNeeded removes the least recently used entry (must be called with lock held)
func (kc *KeyWordCache) evictIfNeeded() {
	for len(kc.cache) > kc.maxEntries {
		oldestKey, first := 0, true
		var oldestTime time.Time
		for key, entry := range kc.cache {
			if first || entry.LastUsed.Before(oldestTime) {
				oldestKey, oldestTime, first = key, entry.LastUsed, false
			}
		}
		delete(kc.cache, oldestKey)
	}
}

// cleanup runs periodically to remove expired entries
func (kc *KeyWordCache) cleanup() {
	ticker := time.NewTicker(kc.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			kc.cleanupExpired()
		case <-kc.stopCleanup:
			return
		}
	}
}

// cleanupExpired removes expired cache entries
func (kc *KeyWordCache) cleanupExpired() {
	kc.mutex.Lock()
	defer kc.mutex.Unlock()

	removed := 0
	for key, entry := range kc.cache {
		if time.Since(entry.CreatedAt) > kc.maxAge {
			delete(kc.cache, key)
			removed++
		}
	}
	if removed > 0 && kc.Debug {
		log.Printf("[CACHE]: cleaned up %d expired keyword listings", removed)
	}
}

// Stop shuts down the cleanup goroutine; safe to call more than once
func (kc *KeyWordCache) Stop() {
	kc.stopOnce.Do(func() {
		close(kc.stopCleanup)
	})
}
