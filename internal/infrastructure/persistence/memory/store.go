// Package memory provides in-process implementations of the repositories.
// Используется в тестах и в режиме STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

type dayKey struct {
	area shared.Area
	date string
}

// Store holds students, attendance days and teachers in maps guarded by one
// RWMutex. Values are copied on the way in and out.
type Store struct {
	mu       sync.RWMutex
	students map[shared.Area][]*student.Student
	days     map[dayKey]*attendance.Day
	teachers map[string]*teacher.Teacher
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		students: make(map[shared.Area][]*student.Student),
		days:     make(map[dayKey]*attendance.Day),
		teachers: make(map[string]*teacher.Teacher),
	}
}

// Students returns the Store as a student.Repository.
func (s *Store) Students() student.Repository { return studentRepo{s} }

// Attendance returns the Store as an attendance.Repository.
func (s *Store) Attendance() attendance.Repository { return attendanceRepo{s} }

// Teachers returns the Store as a teacher.Repository.
func (s *Store) Teachers() teacher.Repository { return teacherRepo{s} }

// ──────────────────────────────────────────────────────────────────────────────
// Students
// ──────────────────────────────────────────────────────────────────────────────

type studentRepo struct{ s *Store }

func (r studentRepo) GetStudents(ctx context.Context, area shared.Area) ([]*student.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := r.s.students[area]
	out := make([]*student.Student, 0, len(list))
	for _, st := range list {
		c := *st
		out = append(out, &c)
	}
	return out, nil
}

func (r studentRepo) Create(ctx context.Context, st *student.Student) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.students[st.Area] {
		if existing.ID == st.ID {
			return "", shared.NewDomainError("student", "Create", shared.ErrAlreadyExists, "student id already used")
		}
	}
	c := *st
	list := append(r.s.students[st.Area], &c)
	sort.SliceStable(list, func(i, j int) bool { return student.Less(list[i], list[j]) })
	r.s.students[st.Area] = list
	return st.ID, nil
}

func (r studentRepo) CountByArea(ctx context.Context) (map[shared.Area]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[shared.Area]int, len(r.s.students))
	for area, list := range r.s.students {
		out[area] = len(list)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Attendance
// ──────────────────────────────────────────────────────────────────────────────

type attendanceRepo struct{ s *Store }

func cloneDay(d *attendance.Day) *attendance.Day {
	c := *d
	c.Records = append([]attendance.Record(nil), d.Records...)
	return &c
}

func (r attendanceRepo) GetDay(ctx context.Context, area shared.Area, date time.Time) (*attendance.Day, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.days[dayKey{area: area, date: timeutil.FormatDate(date)}]
	if !ok {
		return nil, shared.ErrAttendanceDayNotFound
	}
	return cloneDay(d), nil
}

func (r attendanceRepo) CreateIfAbsent(ctx context.Context, day *attendance.Day) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := dayKey{area: day.Area, date: day.DateKey()}
	if _, exists := r.s.days[k]; exists {
		return false, nil
	}
	r.s.days[k] = cloneDay(day)
	return true, nil
}

func (r attendanceRepo) ListDays(ctx context.Context, area shared.Area, rng attendance.DateRange) ([]*attendance.Day, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*attendance.Day, 0)
	for k, d := range r.s.days {
		if k.area == area && rng.Contains(d.Date) {
			out = append(out, cloneDay(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Teachers
// ──────────────────────────────────────────────────────────────────────────────

type teacherRepo struct{ s *Store }

func (r teacherRepo) Upsert(ctx context.Context, t *teacher.Teacher) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *t
	if existing, ok := r.s.teachers[t.UID]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	r.s.teachers[t.UID] = &c
	return nil
}

func (r teacherRepo) List(ctx context.Context, area shared.Area) ([]*teacher.Teacher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*teacher.Teacher, 0)
	for _, t := range r.s.teachers {
		if area.IsAll() || t.Area == area {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ai, aj := out[i].Area.Index(), out[j].Area.Index(); ai != aj {
			return ai < aj
		}
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].UID < out[j].UID
	})
	return out, nil
}

func (r teacherRepo) Delete(ctx context.Context, uid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teachers[uid]; !ok {
		return shared.ErrTeacherNotFound
	}
	delete(r.s.teachers, uid)
	return nil
}

func (r teacherRepo) CountByArea(ctx context.Context) (map[shared.Area]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[shared.Area]int)
	for _, t := range r.s.teachers {
		if t.Active {
			out[t.Area]++
		}
	}
	return out, nil
}
