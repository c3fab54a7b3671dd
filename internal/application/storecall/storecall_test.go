package storecall

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/retry"
)

func fastPolicy() Policy {
	return Policy{
		ReadTimeout:  20 * time.Millisecond,
		WriteTimeout: 20 * time.Millisecond,
		Retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithInitialDelay(time.Millisecond),
			retry.WithJitter(0),
			retry.WithRetryIf(shared.IsRetryable),
		),
	}
}

func TestRead_RetriesStorageUnavailable(t *testing.T) {
	var calls atomic.Int32
	v, err := Read(context.Background(), fastPolicy(), "GetStudents", func(ctx context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, shared.WrapError("store", "GetStudents", shared.ErrStorageUnavailable, "down", errors.New("conn refused"))
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRead_DoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	_, err := Read(context.Background(), fastPolicy(), "GetDay", func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", shared.ErrAttendanceDayNotFound
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRead_AttemptTimeoutIsStorageUnavailable(t *testing.T) {
	_, err := Read(context.Background(), fastPolicy(), "ListDays", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
}

func TestWrite_TimeoutIsUnknownOutcome(t *testing.T) {
	var calls atomic.Int32
	_, err := Write(context.Background(), fastPolicy(), "CreateIfAbsent", func(ctx context.Context) (bool, error) {
		calls.Add(1)
		<-ctx.Done()
		return false, ctx.Err()
	})

	assert.ErrorIs(t, err, shared.ErrUnknownOutcome)
	assert.False(t, shared.IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestWrite_PassesThroughStorageUnavailable(t *testing.T) {
	_, err := Write(context.Background(), fastPolicy(), "CreateIfAbsent", func(ctx context.Context) (bool, error) {
		return false, shared.WrapError("store", "CreateIfAbsent", shared.ErrStorageUnavailable, "pool closed", errors.New("closed"))
	})

	assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, shared.ErrUnknownOutcome)
}
