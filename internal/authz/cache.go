package authz

import (
	"sync"
	"time"

	"github.com/fitstack/fitness-platform/internal/rbac"
)

// permissionCache is an in-process, per-instance cache from user id to that
// user's permission set. Each engine instance owns its cache, so every
// deployment instance has an independent staleness window; that trade-off
// (low-latency checks over strict cross-instance consistency) is deliberate.
type permissionCache struct {
	mu      sync.RWMutex
	entries map[int64]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	permissions []rbac.Permission
	fetchedAt   time.Time
}

func newPermissionCache(ttl time.Duration, now func() time.Time) *permissionCache {
	return &permissionCache{
		entries: make(map[int64]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *permissionCache) get(userID int64) ([]rbac.Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.permissions, true
}

func (c *permissionCache) set(userID int64, permissions []rbac.Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userID] = cacheEntry{permissions: permissions, fetchedAt: c.now()}
}

func (c *permissionCache) invalidate(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, userID)
}

func (c *permissionCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int64]cacheEntry)
}
