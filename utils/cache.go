package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// NameEntry is a cached display name
type NameEntry struct {
	Name      string
	ExpiresAt time.Time
}

// NameCache maps user ids to display names so leaderboards do not fetch
// every user on every page turn
type NameCache struct {
	data          map[int64]NameEntry
	mutex         sync.RWMutex
	ttl           time.Duration
	now           func() time.Time
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
}

// Global cache instance
var Names *NameCache

// NewNameCache creates a cache without a cleanup routine
func NewNameCache(ttl time.Duration) *NameCache {
	return &NameCache{
		data: make(map[int64]NameEntry),
		ttl:  ttl,
		now:  time.Now,
		done: make(chan struct{}),
	}
}

// InitializeNameCache sets up the global name cache
func InitializeNameCache(ttl time.Duration) {
	Names = NewNameCache(ttl)

	// Start cleanup routine every 5 minutes
	Names.cleanupTicker = time.NewTicker(5 * time.Minute)
	go Names.cleanupRoutine()
}

// CloseNameCache stops the cache cleanup routine
func CloseNameCache() {
	if Names != nil {
		Names.Close()
	}
}

// Close stops the cleanup routine
func (nc *NameCache) Close() {
	nc.closeOnce.Do(func() {
		if nc.cleanupTicker != nil {
			nc.cleanupTicker.Stop()
		}
		close(nc.done)
	})
}

// Get retrieves a name from cache
func (nc *NameCache) Get(userID int64) (string, bool) {
	nc.mutex.RLock()
	entry, exists := nc.data[userID]
	nc.mutex.RUnlock()

	if !exists {
		return "", false
	}

	if nc.now().After(entry.ExpiresAt) {
		nc.Delete(userID)
		return "", false
	}

	return entry.Name, true
}

// Set stores a name in cache
func (nc *NameCache) Set(userID int64, name string) {
	nc.mutex.Lock()
	nc.data[userID] = NameEntry{Name: name, ExpiresAt: nc.now().Add(nc.ttl)}
	nc.mutex.Unlock()
}

// Delete removes a name from cache
func (nc *NameCache) Delete(userID int64) {
	nc.mutex.Lock()
	delete(nc.data, userID)
	nc.mutex.Unlock()
}

// Size returns the number of entries in cache
func (nc *NameCache) Size() int {
	nc.mutex.RLock()
	defer nc.mutex.RUnlock()
	return len(nc.data)
}

// Resolve returns the cached name or fetches and caches it. Users that
// cannot be fetched are shown by id and not cached.
func (nc *NameCache) Resolve(userID int64, fetch func(int64) (string, error)) string {
	if name, ok := nc.Get(userID); ok {
		return name
	}

	name, err := fetch(userID)
	if err != nil || name == "" {
		log.Debug().Err(err).Int64("user_id", userID).Msg("could not resolve user name")
		return "Unknown user (" + strconv.FormatInt(userID, 10) + ")"
	}

	nc.Set(userID, name)
	return name
}

// cleanupRoutine removes expired entries periodically
func (nc *NameCache) cleanupRoutine() {
	for {
		select {
		case <-nc.cleanupTicker.C:
			nc.cleanup()
		case <-nc.done:
			return
		}
	}
}

// cleanup removes expired entries
func (nc *NameCache) cleanup() int {
	now := nc.now()

	nc.mutex.Lock()
	removed := 0
	for userID, entry := range nc.data {
		if now.After(entry.ExpiresAt) {
			delete(nc.data, userID)
			removed++
		}
	}
	size := len(nc.data)
	nc.mutex.Unlock()

	if removed > 0 {
		log.Debug().Int("removed", removed).Int("size", size).Msg("cleaned up expired name cache entries")
	}
	return removed
}
