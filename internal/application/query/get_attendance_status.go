// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/logger"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ATTENDANCE STATUS QUERY
// Проверяет, отмечена ли посещаемость области за день. Только чтение.
// ══════════════════════════════════════════════════════════════════════════════

// GetAttendanceStatusQuery asks whether a day has been submitted.
type GetAttendanceStatusQuery struct {
	Identity identity.Identity
	Area     string
	// Date is YYYY-MM-DD; empty means today.
	Date string
}

// AttendanceStatus is the query result. Day is nil when not submitted.
type AttendanceStatus struct {
	Area      shared.Area
	Date      string
	Submitted bool
	Day       *attendance.Day
}

// GetAttendanceStatusHandler handles GetAttendanceStatusQuery.
type GetAttendanceStatusHandler struct {
	gate     access.Gate
	days     attendance.Repository
	cache    attendance.DayCache
	policy   storecall.Policy
	clock    timeutil.Clock
	location *time.Location
	log      *logger.Logger
}

// NewGetAttendanceStatusHandler creates a new handler. cache may be nil.
func NewGetAttendanceStatusHandler(
	days attendance.Repository,
	cache attendance.DayCache,
	policy storecall.Policy,
	clock timeutil.Clock,
	location *time.Location,
	log *logger.Logger,
) *GetAttendanceStatusHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if location == nil {
		location = timeutil.IST
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GetAttendanceStatusHandler{
		gate:     access.NewGate(),
		days:     days,
		cache:    cache,
		policy:   policy,
		clock:    clock,
		location: location,
		log:      log.With(logger.Component("attendance_status")),
	}
}

// Handle executes the query.
func (h *GetAttendanceStatusHandler) Handle(ctx context.Context, q GetAttendanceStatusQuery) (*AttendanceStatus, error) {
	area := shared.NormalizeArea(q.Area)
	if err := h.gate.Authorize(q.Identity, access.ReadAttendance, area); err != nil {
		return nil, err
	}
	if !area.IsCenter() {
		return nil, shared.Validation("attendance", "Status", shared.ErrInvalidArea, "status is per center")
	}

	date := timeutil.Today(h.clock(), h.location)
	if q.Date != "" {
		d, err := timeutil.ParseDate(q.Date)
		if err != nil {
			return nil, shared.Validation("attendance", "Status", shared.ErrInvalidDate, err.Error())
		}
		date = d
	}

	res := &AttendanceStatus{Area: area, Date: timeutil.FormatDate(date)}
	day, err := h.lookup(ctx, area, date)
	if errors.Is(err, shared.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Submitted = true
	res.Day = day
	return res, nil
}

func (h *GetAttendanceStatusHandler) lookup(ctx context.Context, area shared.Area, date time.Time) (*attendance.Day, error) {
	if h.cache != nil {
		day, err := h.cache.Get(ctx, area, date)
		if err == nil {
			return day, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			h.log.Warn("attendance cache read failed", logger.Area(string(area)), logger.Err(err))
		}
	}

	day, err := storecall.Read(ctx, h.policy, "GetDay", func(ctx context.Context) (*attendance.Day, error) {
		return h.days.GetDay(ctx, area, date)
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, day); err != nil {
			h.log.Warn("attendance cache write failed", logger.Area(string(area)), logger.Err(err))
		}
	}
	return day, nil
}
