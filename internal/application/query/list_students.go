package query

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsQuery lists the roster of an area, or of every area for All.
type ListStudentsQuery struct {
	Identity identity.Identity
	Area     string
}

// ListStudentsResult holds the roster in canonical area order, then
// registration order.
type ListStudentsResult struct {
	Area     shared.Area
	Students []*student.Student
}

// ListStudentsHandler handles ListStudentsQuery.
type ListStudentsHandler struct {
	gate   access.Gate
	roster *RosterReader
}

// NewListStudentsHandler creates a new ListStudentsHandler.
func NewListStudentsHandler(roster *RosterReader) *ListStudentsHandler {
	return &ListStudentsHandler{gate: access.NewGate(), roster: roster}
}

// Handle executes the query.
func (h *ListStudentsHandler) Handle(ctx context.Context, q ListStudentsQuery) (*ListStudentsResult, error) {
	area := shared.NormalizeArea(q.Area)
	if err := h.gate.Authorize(q.Identity, access.ReadRoster, area); err != nil {
		return nil, err
	}
	if !area.IsAll() && !area.IsCenter() {
		return nil, shared.Validation("student", "List", shared.ErrInvalidArea, "area is required")
	}

	perArea, err := fanOut(ctx, area.Centers(), h.roster.Get)
	if err != nil {
		return nil, err
	}

	out := make([]*student.Student, 0)
	for _, list := range perArea {
		out = append(out, list...)
	}
	return &ListStudentsResult{Area: area, Students: out}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Roster reader
// ──────────────────────────────────────────────────────────────────────────────

// RosterReader reads rosters through an optional cache with bounded,
// retried store calls.
type RosterReader struct {
	students student.Repository
	cache    student.RosterCache
	policy   storecall.Policy
	log      *logger.Logger
}

// NewRosterReader creates a RosterReader. cache may be nil.
func NewRosterReader(students student.Repository, cache student.RosterCache, policy storecall.Policy, log *logger.Logger) *RosterReader {
	if log == nil {
		log = logger.Nop()
	}
	return &RosterReader{
		students: students,
		cache:    cache,
		policy:   policy,
		log:      log.With(logger.Component("roster_reader")),
	}
}

// Get returns the roster of one center.
func (r *RosterReader) Get(ctx context.Context, area shared.Area) ([]*student.Student, error) {
	if r.cache != nil {
		list, err := r.cache.Get(ctx, area)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			r.log.Warn("roster cache read failed", logger.Area(string(area)), logger.Err(err))
		}
	}

	list, err := storecall.Read(ctx, r.policy, "GetStudents", func(ctx context.Context) ([]*student.Student, error) {
		return r.students.GetStudents(ctx, area)
	})
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, area, list); err != nil {
			r.log.Warn("roster cache write failed", logger.Area(string(area)), logger.Err(err))
		}
	}
	return list, nil
}

// Counts returns the number of students per area.
func (r *RosterReader) Counts(ctx context.Context) (map[shared.Area]int, error) {
	return storecall.Read(ctx, r.policy, "CountStudents", r.students.CountByArea)
}

// fanOut runs fetch for every area in parallel and returns the results in
// the order of areas. The first error cancels the rest.
func fanOut[T any](ctx context.Context, areas []shared.Area, fetch func(context.Context, shared.Area) (T, error)) ([]T, error) {
	out := make([]T, len(areas))
	g, gctx := errgroup.WithContext(ctx)
	for i, area := range areas {
		g.Go(func() error {
			v, err := fetch(gctx, area)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
