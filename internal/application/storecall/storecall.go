// Package storecall bounds store calls made by application handlers.
//
// Каждый вызов хранилища получает собственный дедлайн. Чтения повторяются
// при временной недоступности хранилища; условная запись не повторяется никогда.
package storecall

import (
	"context"
	"errors"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/retry"
)

// Policy holds the deadlines and the read retrier.
type Policy struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Retrier      *retry.Retrier
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 5 * time.Second,
		Retrier:      retry.StoreReadRetrier(shared.IsRetryable),
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.ReadTimeout <= 0 {
		p.ReadTimeout = d.ReadTimeout
	}
	if p.WriteTimeout <= 0 {
		p.WriteTimeout = d.WriteTimeout
	}
	if p.Retrier == nil {
		p.Retrier = d.Retrier
	}
	return p
}

// Read runs an idempotent store read. Each attempt gets ReadTimeout; an
// attempt that hits its own deadline counts as StorageUnavailable and may be
// retried. Cancellation of the parent context stops immediately.
func Read[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	return retry.DoWithData(ctx, p.Retrier, func(ctx context.Context) (T, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.ReadTimeout)
		defer cancel()

		v, err := fn(attemptCtx)
		if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			var zero T
			return zero, shared.WrapError("store", op, shared.ErrStorageUnavailable, "read timed out", err)
		}
		return v, err
	})
}

// Write runs a conditional write once under WriteTimeout. A deadline or
// cancellation while the write may already have been applied is reported
// as UnknownOutcome.
func Write[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	writeCtx, cancel := context.WithTimeout(ctx, p.WriteTimeout)
	defer cancel()

	v, err := fn(writeCtx)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, shared.ErrUnknownOutcome) {
		return v, err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		var zero T
		return zero, shared.WrapError("store", op, shared.ErrUnknownOutcome,
			"write timed out; re-check status before retrying", err)
	}
	return v, err
}
