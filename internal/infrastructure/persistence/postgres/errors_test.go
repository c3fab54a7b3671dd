package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

func TestReadError(t *testing.T) {
	t.Run("server rejection keeps driver error", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
		err := readError("student", "GetByArea", pgErr)

		assert.ErrorIs(t, err, pgErr)
		assert.NotErrorIs(t, err, shared.ErrStorageUnavailable)
	})

	t.Run("transport failure is an outage", func(t *testing.T) {
		err := readError("student", "GetByArea", errors.New("dial tcp: connection refused"))
		assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"pool closed", ErrConnectionClosed, shared.ErrStorageUnavailable},
		{"deadline mid-flight", context.DeadlineExceeded, shared.ErrUnknownOutcome},
		{"broken connection", errors.New("unexpected EOF"), shared.ErrUnknownOutcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeError("attendance", "CreateIfAbsent", tt.err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	t.Run("constraint violation keeps driver error", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505"}
		err := writeError("student", "Create", pgErr)

		assert.True(t, IsUniqueViolation(err))
		assert.NotErrorIs(t, err, shared.ErrUnknownOutcome)
	})
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("other")))
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = "secret"
	dsn := cfg.DSN()

	assert.True(t, strings.Contains(dsn, "dbname=attendance"))
	assert.True(t, strings.Contains(dsn, "connect_timeout=10"))

	cfg.URL = "postgres://u:p@db:5432/x"
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
}

func TestGetMigrations_OrderedWithRollback(t *testing.T) {
	migs := GetMigrations()
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL, m.Name)
		assert.NotEmpty(t, m.DownSQL, m.Name)
	}
	assert.Contains(t, migs[1].UpSQL, "attendance_days")
}
