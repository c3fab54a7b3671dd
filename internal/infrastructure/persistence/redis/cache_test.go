package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheWithClient(client), mr
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])

	err := cache.Get(ctx, "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_RejectsBadInput(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.ErrorIs(t, cache.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, cache.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
}

func TestConfig_OptionsFromURL(t *testing.T) {
	opts, err := Config{URL: "redis://:secret@cache:6380/2"}.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = Config{URL: "http://nope"}.Options()
	assert.Error(t, err)
}

func TestRosterCache_RoundTripAndInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	rc := NewRosterCache(cache, 0)
	ctx := context.Background()

	_, err := rc.Get(ctx, shared.AreaSwang)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	age := 9
	roster := []*student.Student{
		{ID: "s1", Name: "Asha", Age: &age, Area: shared.AreaSwang, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "s2", Name: "Ravi", Area: shared.AreaSwang, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, rc.Set(ctx, shared.AreaSwang, roster))
	assert.True(t, mr.Exists(RosterKey("Swang")))

	got, err := rc.Get(ctx, shared.AreaSwang)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, 9, *got[0].Age)
	assert.Nil(t, got[1].Age)

	require.NoError(t, rc.Invalidate(ctx, shared.AreaSwang))
	_, err = rc.Get(ctx, shared.AreaSwang)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestRosterCache_EmptyRosterIsAHit(t *testing.T) {
	cache, _ := newTestCache(t)
	rc := NewRosterCache(cache, 0)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, shared.AreaPhusro, nil))
	got, err := rc.Get(ctx, shared.AreaPhusro)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDayCache_RoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	dc := NewDayCache(cache, 0)
	ctx := context.Background()
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := dc.Get(ctx, shared.AreaKathara, date)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	day := &attendance.Day{
		Area: shared.AreaKathara,
		Date: date,
		Records: []attendance.Record{
			{StudentID: "k1", StudentName: "Meena", Status: attendance.StatusPresent},
			{StudentID: "k2", StudentName: "Sonu", Status: attendance.StatusAbsent},
		},
		CreatedAt: date.Add(4 * time.Hour),
	}
	require.NoError(t, dc.Set(ctx, day))

	ttl := mr.TTL(AttendanceKey("Kathara", "2024-03-10"))
	assert.Equal(t, TTLAttendanceDay, ttl)

	got, err := dc.Get(ctx, shared.AreaKathara, date)
	require.NoError(t, err)
	assert.Equal(t, shared.AreaKathara, got.Area)
	assert.True(t, got.Date.Equal(date))
	assert.Equal(t, day.Records, got.Records)
	assert.Equal(t, 1, got.PresentCount())
}

func TestDayCache_ConnectionFailureIsNotAMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	dc := NewDayCache(cache, 0)
	mr.Close()

	_, err := dc.Get(context.Background(), shared.AreaSwang, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.False(t, errors.Is(err, shared.ErrNotFound))
}
