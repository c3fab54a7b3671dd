package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
)

// TeacherRepository implements teacher.Repository for PostgreSQL.
type TeacherRepository struct {
	conn *Connection
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(conn *Connection) *TeacherRepository {
	return &TeacherRepository{conn: conn}
}

var _ teacher.Repository = (*TeacherRepository)(nil)

// Upsert creates or replaces the directory entry keyed by uid.
func (r *TeacherRepository) Upsert(ctx context.Context, t *teacher.Teacher) error {
	query := `
		INSERT INTO teachers (uid, display_name, email, phone, gender, join_date, area, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uid) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			gender = EXCLUDED.gender,
			join_date = EXCLUDED.join_date,
			area = EXCLUDED.area,
			active = EXCLUDED.active,
			updated_at = NOW()
	`

	_, err := r.conn.Exec(ctx, query,
		t.UID,
		t.DisplayName,
		t.Email,
		t.Phone,
		t.Gender,
		t.JoinDate,
		string(t.Area),
		t.Active,
		t.CreatedAt,
	)
	if err != nil {
		return writeError("teacher", "Upsert", err)
	}
	return nil
}

// List returns the teachers of area, or all of them for shared.AreaAll.
func (r *TeacherRepository) List(ctx context.Context, area shared.Area) ([]*teacher.Teacher, error) {
	query := `
		SELECT uid, display_name, email, phone, gender, join_date, area, active, created_at
		FROM teachers
		WHERE $1::text = 'All' OR area = $1::text
		ORDER BY array_position(ARRAY['Swang','Kathara','Nawadih','Pipradih','Phusro']::varchar[], area),
		         display_name, uid
	`

	rows, err := r.conn.Query(ctx, query, string(area))
	if err != nil {
		return nil, readError("teacher", "List", err)
	}
	defer rows.Close()

	out := make([]*teacher.Teacher, 0)
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, readError("teacher", "List", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("teacher", "List", err)
	}
	return out, nil
}

// Delete removes the entry.
func (r *TeacherRepository) Delete(ctx context.Context, uid string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM teachers WHERE uid = $1`, uid)
	if err != nil {
		return writeError("teacher", "Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTeacherNotFound
	}
	return nil
}

// CountByArea returns the number of active teachers per area.
func (r *TeacherRepository) CountByArea(ctx context.Context) (map[shared.Area]int, error) {
	rows, err := r.conn.Query(ctx, `SELECT area, count(*) FROM teachers WHERE active GROUP BY area`)
	if err != nil {
		return nil, readError("teacher", "CountByArea", err)
	}
	defer rows.Close()

	out := make(map[shared.Area]int)
	for rows.Next() {
		var area string
		var n int
		if err := rows.Scan(&area, &n); err != nil {
			return nil, readError("teacher", "CountByArea", err)
		}
		out[shared.Area(area)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, readError("teacher", "CountByArea", err)
	}
	return out, nil
}

func scanTeacher(row pgx.Row) (*teacher.Teacher, error) {
	var t teacher.Teacher
	var area string
	err := row.Scan(
		&t.UID,
		&t.DisplayName,
		&t.Email,
		&t.Phone,
		&t.Gender,
		&t.JoinDate,
		&area,
		&t.Active,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Area = shared.Area(area)
	return &t, nil
}
