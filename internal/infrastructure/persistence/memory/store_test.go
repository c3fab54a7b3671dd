package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
)

func day(area shared.Area, d int, status attendance.Status) *attendance.Day {
	return &attendance.Day{
		Area:    area,
		Date:    time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC),
		Records: []attendance.Record{{StudentID: "s1", StudentName: "Asha", Status: status}},
	}
}

func TestCreateIfAbsent_AtMostOnce(t *testing.T) {
	repo := NewStore().Attendance()
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, day(shared.AreaSwang, 1, attendance.StatusPresent))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, day(shared.AreaSwang, 1, attendance.StatusAbsent))
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetDay(ctx, shared.AreaSwang, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, stored.Records[0].Status)

	// same date, other area is independent
	created, err = repo.CreateIfAbsent(ctx, day(shared.AreaKathara, 1, attendance.StatusAbsent))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCreateIfAbsent_ConcurrentExactlyOneWins(t *testing.T) {
	repo := NewStore().Attendance()
	ctx := context.Background()

	const n = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			status := attendance.StatusPresent
			if i%2 == 1 {
				status = attendance.StatusAbsent
			}
			created, err := repo.CreateIfAbsent(ctx, day(shared.AreaSwang, 2, status))
			assert.NoError(t, err)
			if created {
				wins.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestGetDay_NotFound(t *testing.T) {
	_, err := NewStore().Attendance().GetDay(context.Background(), shared.AreaSwang, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStoredDayIsIsolatedFromCaller(t *testing.T) {
	repo := NewStore().Attendance()
	ctx := context.Background()
	d := day(shared.AreaSwang, 3, attendance.StatusPresent)

	_, err := repo.CreateIfAbsent(ctx, d)
	require.NoError(t, err)
	d.Records[0].Status = attendance.StatusAbsent

	stored, err := repo.GetDay(ctx, shared.AreaSwang, d.Date)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, stored.Records[0].Status)
}

func TestListDays_RangeAndOrder(t *testing.T) {
	repo := NewStore().Attendance()
	ctx := context.Background()
	for _, d := range []int{5, 1, 3, 9} {
		_, err := repo.CreateIfAbsent(ctx, day(shared.AreaSwang, d, attendance.StatusPresent))
		require.NoError(t, err)
	}
	_, err := repo.CreateIfAbsent(ctx, day(shared.AreaPhusro, 4, attendance.StatusPresent))
	require.NoError(t, err)

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rng, err := attendance.NewDateRange(&from, &to)
	require.NoError(t, err)

	days, err := repo.ListDays(ctx, shared.AreaSwang, rng)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-03", days[0].DateKey())
	assert.Equal(t, "2024-03-05", days[1].DateKey())
}

func TestStudents_RosterOrderAndCount(t *testing.T) {
	repo := NewStore().Students()
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"C", "A", "B"} {
		_, err := repo.Create(ctx, &student.Student{
			ID: name, Name: name, Area: shared.AreaNawadih, CreatedAt: t0.Add(time.Duration(3-i) * time.Minute),
		})
		require.NoError(t, err)
	}

	roster, err := repo.GetStudents(ctx, shared.AreaNawadih)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, "B", roster[0].ID)
	assert.Equal(t, "A", roster[1].ID)
	assert.Equal(t, "C", roster[2].ID)

	empty, err := repo.GetStudents(ctx, shared.AreaSwang)
	require.NoError(t, err)
	assert.Empty(t, empty)

	counts, err := repo.CountByArea(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[shared.AreaNawadih])

	_, err = repo.Create(ctx, &student.Student{ID: "A", Name: "A", Area: shared.AreaNawadih})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestTeachers_UpsertListDelete(t *testing.T) {
	repo := NewStore().Teachers()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &teacher.Teacher{UID: "u2", DisplayName: "Zara", Area: shared.AreaSwang, Active: true}))
	require.NoError(t, repo.Upsert(ctx, &teacher.Teacher{UID: "u1", DisplayName: "Amit", Area: shared.AreaKathara, Active: true}))
	require.NoError(t, repo.Upsert(ctx, &teacher.Teacher{UID: "u3", DisplayName: "Bela", Area: shared.AreaSwang, Active: true}))

	all, err := repo.List(ctx, shared.AreaAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"u3", "u2", "u1"}, []string{all[0].UID, all[1].UID, all[2].UID})

	swang, err := repo.List(ctx, shared.AreaSwang)
	require.NoError(t, err)
	assert.Len(t, swang, 2)

	counts, err := repo.CountByArea(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[shared.AreaSwang])

	require.NoError(t, repo.Delete(ctx, "u2"))
	assert.ErrorIs(t, repo.Delete(ctx, "u2"), shared.ErrNotFound)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Students().GetStudents(ctx, shared.AreaSwang)
	assert.ErrorIs(t, err, context.Canceled)
}
