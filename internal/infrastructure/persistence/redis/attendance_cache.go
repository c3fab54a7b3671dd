package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// DayCache implements attendance.DayCache on top of Cache.
type DayCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewDayCache creates a new DayCache. A non-positive ttl means TTLAttendanceDay.
func NewDayCache(cache *Cache, ttl time.Duration) *DayCache {
	if ttl <= 0 {
		ttl = TTLAttendanceDay
	}
	return &DayCache{cache: cache, ttl: ttl}
}

var _ attendance.DayCache = (*DayCache)(nil)

// cachedDay is the stored shape. The date is kept as YYYY-MM-DD so that it
// survives the round trip without a zone shift.
type cachedDay struct {
	Area      string              `json:"area"`
	Date      string              `json:"date"`
	Records   []attendance.Record `json:"records"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Get returns the cached day. A miss is reported as shared.ErrNotFound.
func (c *DayCache) Get(ctx context.Context, area shared.Area, date time.Time) (*attendance.Day, error) {
	var dto cachedDay
	if err := c.cache.Get(ctx, AttendanceKey(string(area), timeutil.FormatDate(date)), &dto); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.WrapError("attendance_cache", "Get", shared.ErrNotFound, "day not cached", err)
		}
		return nil, err
	}

	d, err := timeutil.ParseDate(dto.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return &attendance.Day{
		Area:      shared.Area(dto.Area),
		Date:      d,
		Records:   dto.Records,
		CreatedAt: dto.CreatedAt,
	}, nil
}

// Set caches a submitted day.
func (c *DayCache) Set(ctx context.Context, day *attendance.Day) error {
	if day == nil {
		return ErrCacheNilValue
	}
	dto := cachedDay{
		Area:      string(day.Area),
		Date:      day.DateKey(),
		Records:   day.Records,
		CreatedAt: day.CreatedAt,
	}
	return c.cache.Set(ctx, AttendanceKey(dto.Area, dto.Date), dto, c.ttl)
}
