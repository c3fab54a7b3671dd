package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE REPOSITORY IMPLEMENTATION
// Запись дня выполняется одним INSERT ... ON CONFLICT DO NOTHING; первичный
// ключ (area, date) делает запись атомарной без блокировок в процессе.
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRepository implements attendance.Repository for PostgreSQL.
type AttendanceRepository struct {
	conn *Connection
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(conn *Connection) *AttendanceRepository {
	return &AttendanceRepository{conn: conn}
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

// CreateIfAbsent inserts the day unless (area, date) already exists.
func (r *AttendanceRepository) CreateIfAbsent(ctx context.Context, day *attendance.Day) (bool, error) {
	records, err := json.Marshal(day.Records)
	if err != nil {
		return false, fmt.Errorf("failed to marshal records: %w", err)
	}

	query := `
		INSERT INTO attendance_days (area, date, records, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (area, date) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, string(day.Area), day.DateKey(), records, day.CreatedAt)
	if err != nil {
		return false, writeError("attendance", "CreateIfAbsent", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetDay returns the stored day or shared.ErrNotFound.
func (r *AttendanceRepository) GetDay(ctx context.Context, area shared.Area, date time.Time) (*attendance.Day, error) {
	query := `
		SELECT area, date, records, created_at
		FROM attendance_days
		WHERE area = $1 AND date = $2
	`

	day, err := scanDay(r.conn.QueryRow(ctx, query, string(area), timeutil.FormatDate(date)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAttendanceDayNotFound
		}
		return nil, readError("attendance", "GetDay", err)
	}
	return day, nil
}

// ListDays returns the days of area within rng, oldest first.
func (r *AttendanceRepository) ListDays(ctx context.Context, area shared.Area, rng attendance.DateRange) ([]*attendance.Day, error) {
	query := `
		SELECT area, date, records, created_at
		FROM attendance_days
		WHERE area = $1
		  AND ($2::date IS NULL OR date >= $2::date)
		  AND ($3::date IS NULL OR date <= $3::date)
		ORDER BY date
	`

	rows, err := r.conn.Query(ctx, query, string(area), dateArg(rng.From), dateArg(rng.To))
	if err != nil {
		return nil, readError("attendance", "ListDays", err)
	}
	defer rows.Close()

	out := make([]*attendance.Day, 0)
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, readError("attendance", "ListDays", err)
		}
		out = append(out, day)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("attendance", "ListDays", err)
	}
	return out, nil
}

// dateArg renders an optional bound as YYYY-MM-DD or NULL.
func dateArg(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeutil.FormatDate(*t)
	return &s
}

func scanDay(row pgx.Row) (*attendance.Day, error) {
	var (
		area    string
		date    time.Time
		records []byte
		day     attendance.Day
	)
	if err := row.Scan(&area, &date, &records, &day.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(records, &day.Records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	day.Area = shared.Area(area)
	day.Date = timeutil.NormalizeDate(date)
	return &day, nil
}
