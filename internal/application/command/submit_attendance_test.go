package command

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/internal/infrastructure/persistence/memory"
	"github.com/satyalok/attendance-hub/pkg/retry"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// 2024-03-10 09:00 IST
var fixedNow = time.Date(2024, 3, 10, 3, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testPolicy() storecall.Policy {
	return storecall.Policy{
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
		Retrier: retry.New(
			retry.WithMaxAttempts(2),
			retry.WithInitialDelay(time.Millisecond),
			retry.WithRetryIf(shared.IsRetryable),
		),
	}
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) RecordSubmission(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

type fixture struct {
	store   *memory.Store
	handler *SubmitAttendanceHandler
	rec     *recorder
}

func newFixture(t *testing.T, days attendance.Repository) *fixture {
	t.Helper()
	store := memory.NewStore()
	for i, id := range []string{"s1", "s2", "s3"} {
		_, err := store.Students().Create(context.Background(), &student.Student{
			ID: id, Name: "Student " + id, Area: shared.AreaSwang,
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	if days == nil {
		days = store.Attendance()
	}
	rec := &recorder{}
	h := NewSubmitAttendanceHandler(store.Students(), days, SubmitAttendanceConfig{
		Policy:   testPolicy(),
		Clock:    fixedClock,
		Location: timeutil.IST,
		Recorder: rec,
	}, nil)
	return &fixture{store: store, handler: h, rec: rec}
}

func fullRecords() []RecordInput {
	return []RecordInput{
		{StudentID: "s1", Status: "Present"},
		{StudentID: "s2", Status: "Absent"},
		{StudentID: "s3", Status: "Present"},
	}
}

func TestSubmitAttendance_Submitted(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Teacher("t1", shared.AreaSwang),
		Area:     "Swang",
		Date:     "2024-03-09",
		Records:  fullRecords(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "2024-03-09", res.Date)

	stored, err := f.store.Attendance().GetDay(context.Background(), shared.AreaSwang, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, stored.Records, 3)
	assert.Equal(t, "Student s2", stored.Records[1].StudentName)
	assert.Equal(t, attendance.StatusAbsent, stored.Records[1].Status)
	assert.Equal(t, []string{OutcomeSubmitted}, f.rec.outcomes)
}

func TestSubmitAttendance_SecondSubmissionRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cmd := SubmitAttendanceCommand{
		Identity: identity.Teacher("t1", shared.AreaSwang),
		Area:     "Swang",
		Date:     "2024-03-09",
		Records:  fullRecords(),
	}

	_, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)

	cmd.Records[0].Status = "Absent"
	_, err = f.handler.Handle(ctx, cmd)
	assert.ErrorIs(t, err, shared.ErrAlreadySubmitted)

	stored, err := f.store.Attendance().GetDay(ctx, shared.AreaSwang, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, stored.Records[0].Status)
}

func TestSubmitAttendance_EmptyDateMeansToday(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Admin("a1"),
		Area:     "swang",
		Records:  fullRecords(),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", res.Date)
	assert.Equal(t, shared.AreaSwang, res.Area)
}

func TestSubmitAttendance_TodayUsesLocalZone(t *testing.T) {
	f := newFixture(t, nil)
	// 2024-03-10 20:00 UTC is already 2024-03-11 in IST
	f.handler.clock = func() time.Time { return time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC) }

	res, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Admin("a1"),
		Area:     "Swang",
		Date:     "2024-03-11",
		Records:  fullRecords(),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", res.Date)
}

func TestSubmitAttendance_Validation(t *testing.T) {
	f := newFixture(t, nil)
	admin := identity.Admin("a1")

	tests := []struct {
		name string
		cmd  SubmitAttendanceCommand
		kind error
	}{
		{"future date", SubmitAttendanceCommand{Identity: admin, Area: "Swang", Date: "2024-03-11", Records: fullRecords()}, shared.ErrFutureDate},
		{"bad date", SubmitAttendanceCommand{Identity: admin, Area: "Swang", Date: "09/03/2024", Records: fullRecords()}, shared.ErrInvalidDate},
		{"all area", SubmitAttendanceCommand{Identity: admin, Area: "All", Date: "2024-03-09", Records: fullRecords()}, shared.ErrInvalidArea},
		{"unknown area", SubmitAttendanceCommand{Identity: admin, Area: "Ranchi", Date: "2024-03-09", Records: fullRecords()}, shared.ErrInvalidArea},
		{"bad status", SubmitAttendanceCommand{Identity: admin, Area: "Swang", Date: "2024-03-09", Records: []RecordInput{{"s1", "Late"}}}, shared.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.handler.Handle(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.kind)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestSubmitAttendance_IncompleteRoster(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Teacher("t1", shared.AreaSwang),
		Area:     "Swang",
		Date:     "2024-03-09",
		Records:  fullRecords()[:2],
	})
	require.ErrorIs(t, err, shared.ErrIncompleteRoster)

	var ire *shared.IncompleteRosterError
	require.True(t, errors.As(err, &ire))
	assert.Equal(t, []string{"s3"}, ire.Mismatch.Missing)

	_, err = f.store.Attendance().GetDay(context.Background(), shared.AreaSwang, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitAttendance_EmptyRoster(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Teacher("t1", shared.AreaPhusro),
		Area:     "Phusro",
		Date:     "2024-03-09",
	})
	assert.ErrorIs(t, err, shared.ErrIncompleteRoster)
}

func TestSubmitAttendance_AreaIsolation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Teacher("t9", shared.AreaKathara),
		Area:     "Swang",
		Date:     "2024-03-09",
		Records:  fullRecords(),
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	days, err := f.store.Attendance().ListDays(context.Background(), shared.AreaSwang, attendance.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.Equal(t, []string{OutcomeUnauthorized}, f.rec.outcomes)
}

func TestSubmitAttendance_MisconfiguredIdentity(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Identity{UID: "t1", Role: identity.RoleTeacher},
		Area:     "Swang",
		Records:  fullRecords(),
	})
	assert.ErrorIs(t, err, shared.ErrMisconfiguredIdentity)
}

func TestSubmitAttendance_ConcurrentSubmissionsExactlyOneWins(t *testing.T) {
	f := newFixture(t, nil)

	const n = 32
	var submitted, already atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
				Identity: identity.Teacher("t1", shared.AreaSwang),
				Area:     "Swang",
				Date:     "2024-03-08",
				Records:  fullRecords(),
			})
			switch {
			case err == nil:
				submitted.Add(1)
			case errors.Is(err, shared.ErrAlreadySubmitted):
				already.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), submitted.Load())
	assert.Equal(t, int32(n-1), already.Load())
}

// slowDays blocks CreateIfAbsent until the context ends.
type slowDays struct {
	attendance.Repository
	calls atomic.Int32
}

func (s *slowDays) CreateIfAbsent(ctx context.Context, _ *attendance.Day) (bool, error) {
	s.calls.Add(1)
	<-ctx.Done()
	return false, ctx.Err()
}

func TestSubmitAttendance_WriteTimeoutIsUnknownOutcome(t *testing.T) {
	slow := &slowDays{}
	f := newFixture(t, slow)

	_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Teacher("t1", shared.AreaSwang),
		Area:     "Swang",
		Date:     "2024-03-09",
		Records:  fullRecords(),
	})
	assert.ErrorIs(t, err, shared.ErrUnknownOutcome)
	assert.Equal(t, int32(1), slow.calls.Load(), "write must not be retried")
	assert.Equal(t, []string{OutcomeUnknown}, f.rec.outcomes)
}

// downDays fails every write before sending it.
type downDays struct{ attendance.Repository }

func (downDays) CreateIfAbsent(context.Context, *attendance.Day) (bool, error) {
	return false, shared.WrapError("attendance", "CreateIfAbsent", shared.ErrStorageUnavailable, "pool closed", errors.New("closed pool"))
}

func TestSubmitAttendance_StorageUnavailable(t *testing.T) {
	f := newFixture(t, downDays{})

	_, err := f.handler.Handle(context.Background(), SubmitAttendanceCommand{
		Identity: identity.Teacher("t1", shared.AreaSwang),
		Area:     "Swang",
		Date:     "2024-03-09",
		Records:  fullRecords(),
	})
	assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, shared.ErrUnknownOutcome)
}
