package query

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Сводка для администратора: ученики, учителя и отметка за сегодня по областям.
// ══════════════════════════════════════════════════════════════════════════════

// GetDashboardQuery requests the admin overview.
type GetDashboardQuery struct {
	Identity identity.Identity
}

// AreaSummary is one dashboard row.
type AreaSummary struct {
	Area           shared.Area
	Students       int
	Teachers       int
	SubmittedToday bool
}

// Dashboard is the admin overview in canonical area order.
type Dashboard struct {
	Date  string
	Areas []AreaSummary
}

// GetDashboardHandler handles GetDashboardQuery.
type GetDashboardHandler struct {
	gate     access.Gate
	roster   *RosterReader
	teachers teacher.Repository
	days     attendance.Repository
	policy   storecall.Policy
	clock    timeutil.Clock
	location *time.Location
}

// NewGetDashboardHandler creates a new GetDashboardHandler.
func NewGetDashboardHandler(
	roster *RosterReader,
	teachers teacher.Repository,
	days attendance.Repository,
	policy storecall.Policy,
	clock timeutil.Clock,
	location *time.Location,
) *GetDashboardHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if location == nil {
		location = timeutil.IST
	}
	return &GetDashboardHandler{
		gate:     access.NewGate(),
		roster:   roster,
		teachers: teachers,
		days:     days,
		policy:   policy,
		clock:    clock,
		location: location,
	}
}

// Handle executes the query.
func (h *GetDashboardHandler) Handle(ctx context.Context, q GetDashboardQuery) (*Dashboard, error) {
	if err := h.gate.Authorize(q.Identity, access.ReadDashboard, shared.AreaAll); err != nil {
		return nil, err
	}

	today := timeutil.Today(h.clock(), h.location)
	areas := shared.Areas()

	var students, teachers map[shared.Area]int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = h.roster.Counts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		teachers, err = storecall.Read(gctx, h.policy, "CountTeachers", h.teachers.CountByArea)
		return err
	})

	var submitted []bool
	g.Go(func() error {
		var err error
		submitted, err = fanOut(gctx, areas, func(ctx context.Context, a shared.Area) (bool, error) {
			_, err := storecall.Read(ctx, h.policy, "GetDay", func(ctx context.Context) (*attendance.Day, error) {
				return h.days.GetDay(ctx, a, today)
			})
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Dashboard{Date: timeutil.FormatDate(today), Areas: make([]AreaSummary, 0, len(areas))}
	for i, a := range areas {
		out.Areas = append(out.Areas, AreaSummary{
			Area:           a,
			Students:       students[a],
			Teachers:       teachers[a],
			SubmittedToday: submitted[i],
		})
	}
	return out, nil
}
