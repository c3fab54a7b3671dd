package redis

import (
	"context"
	"errors"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
)

// RosterCache implements student.RosterCache on top of Cache.
type RosterCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewRosterCache creates a new RosterCache. A non-positive ttl means TTLRoster.
func NewRosterCache(cache *Cache, ttl time.Duration) *RosterCache {
	if ttl <= 0 {
		ttl = TTLRoster
	}
	return &RosterCache{cache: cache, ttl: ttl}
}

var _ student.RosterCache = (*RosterCache)(nil)

// Get returns the cached roster of area. A miss is reported as shared.ErrNotFound.
func (c *RosterCache) Get(ctx context.Context, area shared.Area) ([]*student.Student, error) {
	var roster []*student.Student
	if err := c.cache.Get(ctx, RosterKey(string(area)), &roster); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.WrapError("roster_cache", "Get", shared.ErrNotFound, "roster not cached", err)
		}
		return nil, err
	}
	return roster, nil
}

// Set caches the roster of area.
func (c *RosterCache) Set(ctx context.Context, area shared.Area, roster []*student.Student) error {
	if roster == nil {
		roster = []*student.Student{}
	}
	return c.cache.Set(ctx, RosterKey(string(area)), roster, c.ttl)
}

// Invalidate drops the cached roster of area.
func (c *RosterCache) Invalidate(ctx context.Context, area shared.Area) error {
	return c.cache.Delete(ctx, RosterKey(string(area)))
}
