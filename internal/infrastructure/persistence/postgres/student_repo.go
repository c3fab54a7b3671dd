package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

var _ student.Repository = (*StudentRepository)(nil)

// Create inserts a new student and returns its id.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) (string, error) {
	query := `
		INSERT INTO students (
			id, area, name, age, admission_date, father_name, mother_name,
			contact, address, aadhaar, date_of_birth, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		string(s.Area),
		s.Name,
		s.Age,
		s.AdmissionDate,
		s.FatherName,
		s.MotherName,
		s.Contact,
		s.Address,
		s.Aadhaar,
		s.DateOfBirth,
		s.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return "", shared.WrapError("student", "Create", shared.ErrAlreadyExists, "student id already used", err)
		}
		return "", writeError("student", "Create", err)
	}

	return s.ID, nil
}

// GetStudents returns the roster of area in registration order.
func (r *StudentRepository) GetStudents(ctx context.Context, area shared.Area) ([]*student.Student, error) {
	query := `
		SELECT id, area, name, age, admission_date, father_name, mother_name,
			   contact, address, aadhaar, date_of_birth, created_at
		FROM students
		WHERE area = $1
		ORDER BY created_at, id
	`

	rows, err := r.conn.Query(ctx, query, string(area))
	if err != nil {
		return nil, readError("student", "GetStudents", err)
	}
	defer rows.Close()

	out := make([]*student.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, readError("student", "GetStudents", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("student", "GetStudents", err)
	}
	return out, nil
}

// CountByArea returns the number of students per area.
func (r *StudentRepository) CountByArea(ctx context.Context) (map[shared.Area]int, error) {
	rows, err := r.conn.Query(ctx, `SELECT area, count(*) FROM students GROUP BY area`)
	if err != nil {
		return nil, readError("student", "CountByArea", err)
	}
	defer rows.Close()

	out := make(map[shared.Area]int)
	for rows.Next() {
		var area string
		var n int
		if err := rows.Scan(&area, &n); err != nil {
			return nil, readError("student", "CountByArea", err)
		}
		out[shared.Area(area)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, readError("student", "CountByArea", err)
	}
	return out, nil
}

func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var area string
	err := row.Scan(
		&s.ID,
		&area,
		&s.Name,
		&s.Age,
		&s.AdmissionDate,
		&s.FatherName,
		&s.MotherName,
		&s.Contact,
		&s.Address,
		&s.Aadhaar,
		&s.DateOfBirth,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Area = shared.Area(area)
	return &s, nil
}
