package attendance

import (
	"context"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// Repository is the Attendance Store.
type Repository interface {
	// GetDay returns the stored day or shared.ErrNotFound.
	GetDay(ctx context.Context, area shared.Area, date time.Time) (*Day, error)

	// CreateIfAbsent atomically stores day unless one already exists for
	// its (area, date). created is false when an existing day was found;
	// the existing day is left untouched.
	CreateIfAbsent(ctx context.Context, day *Day) (created bool, err error)

	// ListDays returns the days of area within r, ordered by date ascending.
	ListDays(ctx context.Context, area shared.Area, r DateRange) ([]*Day, error)
}

// DayCache caches found days. Days are write-once, so entries never go stale.
type DayCache interface {
	Get(ctx context.Context, area shared.Area, date time.Time) (*Day, error)
	Set(ctx context.Context, day *Day) error
}
