package query

import (
	"context"
	"time"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/report"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/logger"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET REPORT QUERY
// Собирает дни посещаемости за период и агрегирует их.
// Для All запрашивает все области параллельно.
// ══════════════════════════════════════════════════════════════════════════════

// GetReportQuery contains the report parameters.
type GetReportQuery struct {
	Identity identity.Identity

	// Area is a center name or "All".
	Area string

	// From and To are inclusive YYYY-MM-DD bounds; empty means open.
	From string
	To   string
}

// GetReportResult is the aggregated report.
type GetReportResult struct {
	Area   shared.Area
	From   string
	To     string
	Days   int
	Report report.Report
}

// GetReportHandler handles GetReportQuery.
type GetReportHandler struct {
	gate   access.Gate
	days   attendance.Repository
	policy storecall.Policy
	log    *logger.Logger
}

// NewGetReportHandler creates a new GetReportHandler.
func NewGetReportHandler(days attendance.Repository, policy storecall.Policy, log *logger.Logger) *GetReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetReportHandler{
		gate:   access.NewGate(),
		days:   days,
		policy: policy,
		log:    log.With(logger.Component("report")),
	}
}

// Handle executes the query.
func (h *GetReportHandler) Handle(ctx context.Context, q GetReportQuery) (*GetReportResult, error) {
	area := shared.NormalizeArea(q.Area)
	if err := h.gate.Authorize(q.Identity, access.ReadReport, area); err != nil {
		return nil, err
	}
	if !area.IsAll() && !area.IsCenter() {
		return nil, shared.Validation("report", "Get", shared.ErrInvalidArea, "area is required")
	}

	from, err := optionalDate("From", q.From)
	if err != nil {
		return nil, err
	}
	to, err := optionalDate("To", q.To)
	if err != nil {
		return nil, err
	}
	rng, err := attendance.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	perArea, err := fanOut(ctx, area.Centers(), func(ctx context.Context, a shared.Area) ([]*attendance.Day, error) {
		return storecall.Read(ctx, h.policy, "ListDays", func(ctx context.Context) ([]*attendance.Day, error) {
			return h.days.ListDays(ctx, a, rng)
		})
	})
	if err != nil {
		return nil, err
	}

	var days []*attendance.Day
	for _, list := range perArea {
		days = append(days, list...)
	}

	// Abandon the aggregation if the caller has gone away.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &GetReportResult{
		Area:   area,
		From:   q.From,
		To:     q.To,
		Days:   len(days),
		Report: report.Build(days),
	}

	h.log.Debug("report built",
		logger.Area(string(area)),
		logger.Int("days", len(days)),
		logger.Latency(time.Since(start)),
	)
	return res, nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := timeutil.ParseDate(raw)
	if err != nil {
		return nil, shared.Validation("report", "Get", shared.ErrInvalidDate, field+": "+err.Error())
	}
	return &t, nil
}
