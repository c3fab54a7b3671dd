// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"time"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/pkg/logger"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ATTENDANCE COMMAND
// Записывает посещаемость области за день. Не более одной записи на
// (область, дата): координация только через условную запись хранилища.
// ══════════════════════════════════════════════════════════════════════════════

// RecordInput is one submitted row.
type RecordInput struct {
	StudentID string
	Status    string
}

// SubmitAttendanceCommand contains the data of one submission.
type SubmitAttendanceCommand struct {
	Identity identity.Identity

	// Area is the raw area name from the request.
	Area string

	// Date is YYYY-MM-DD; empty means today in the configured zone.
	Date string

	Records []RecordInput
}

// SubmitAttendanceResult is returned only when the day was created.
type SubmitAttendanceResult struct {
	Area  shared.Area
	Date  string
	Count int
}

// Submission outcomes reported to the recorder.
const (
	OutcomeSubmitted          = "submitted"
	OutcomeAlreadySubmitted   = "already_submitted"
	OutcomeIncompleteRoster   = "incomplete_roster"
	OutcomeUnauthorized       = "unauthorized"
	OutcomeValidation         = "validation"
	OutcomeUnknown            = "outcome_unknown"
	OutcomeStorageUnavailable = "storage_unavailable"
	OutcomeError              = "error"
)

// OutcomeRecorder counts submission outcomes.
type OutcomeRecorder interface {
	RecordSubmission(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSubmission(string) {}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAttendanceHandler handles SubmitAttendanceCommand.
type SubmitAttendanceHandler struct {
	gate     access.Gate
	students student.Repository
	days     attendance.Repository
	dayCache attendance.DayCache
	recorder OutcomeRecorder
	policy   storecall.Policy
	clock    timeutil.Clock
	location *time.Location
	log      *logger.Logger
}

// SubmitAttendanceConfig configures the handler.
type SubmitAttendanceConfig struct {
	Policy   storecall.Policy
	Clock    timeutil.Clock
	Location *time.Location
	// DayCache and Recorder are optional.
	DayCache attendance.DayCache
	Recorder OutcomeRecorder
}

// NewSubmitAttendanceHandler creates a new SubmitAttendanceHandler.
func NewSubmitAttendanceHandler(
	students student.Repository,
	days attendance.Repository,
	cfg SubmitAttendanceConfig,
	log *logger.Logger,
) *SubmitAttendanceHandler {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.SystemClock
	}
	if cfg.Location == nil {
		cfg.Location = timeutil.IST
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SubmitAttendanceHandler{
		gate:       access.NewGate(),
		students:   students,
		days:       days,
		dayCache:   cfg.DayCache,
		recorder:   cfg.Recorder,
		policy:     cfg.Policy,
		clock:      cfg.Clock,
		location:   cfg.Location,
		log:        log.With(logger.Component("submit_attendance")),
	}
}

// Handle executes the submission.
//
// Errors: Unauthorized, MisconfiguredIdentity, Validation, IncompleteRoster,
// AlreadySubmitted, UnknownOutcome, StorageUnavailable.
func (h *SubmitAttendanceHandler) Handle(ctx context.Context, cmd SubmitAttendanceCommand) (*SubmitAttendanceResult, error) {
	res, err := h.handle(ctx, cmd)
	h.recorder.RecordSubmission(outcomeOf(err))
	return res, err
}

func (h *SubmitAttendanceHandler) handle(ctx context.Context, cmd SubmitAttendanceCommand) (*SubmitAttendanceResult, error) {
	area := shared.NormalizeArea(cmd.Area)
	if err := h.gate.Authorize(cmd.Identity, access.SubmitAttendance, area); err != nil {
		return nil, err
	}
	if !area.IsCenter() {
		return nil, shared.Validation("attendance", "Submit", shared.ErrInvalidArea,
			"attendance is recorded for a single center")
	}

	now := h.clock()
	date, err := h.resolveDate(cmd.Date, now)
	if err != nil {
		return nil, err
	}

	rows := make([]attendance.Submission, 0, len(cmd.Records))
	for _, r := range cmd.Records {
		status, err := attendance.ParseStatus(r.Status)
		if err != nil {
			return nil, err
		}
		rows = append(rows, attendance.Submission{StudentID: r.StudentID, Status: status})
	}

	roster, err := storecall.Read(ctx, h.policy, "GetStudents", func(ctx context.Context) ([]*student.Student, error) {
		return h.students.GetStudents(ctx, area)
	})
	if err != nil {
		return nil, err
	}

	day, err := attendance.NewDay(area, date, roster, rows, now)
	if err != nil {
		return nil, err
	}

	log := h.log.With(logger.Area(string(area)), logger.Date(day.DateKey()), logger.UID(cmd.Identity.UID))
	if rid := logger.RequestIDFromContext(ctx); rid != "" {
		log = log.WithRequestID(rid)
	}

	created, err := storecall.Write(ctx, h.policy, "CreateIfAbsent", func(ctx context.Context) (bool, error) {
		return h.days.CreateIfAbsent(ctx, day)
	})
	if err != nil {
		if errors.Is(err, shared.ErrUnknownOutcome) {
			log.Warn("attendance write outcome unknown", logger.Err(err))
		} else {
			log.Error("attendance write failed", logger.Err(err))
		}
		return nil, err
	}
	if !created {
		log.Info("attendance already submitted")
		return nil, shared.ErrAttendanceAlreadySubmitted
	}

	if h.dayCache != nil {
		if err := h.dayCache.Set(ctx, day); err != nil {
			log.Warn("failed to cache attendance day", logger.Err(err))
		}
	}

	log.Info("attendance submitted", logger.Int("count", len(day.Records)))
	return &SubmitAttendanceResult{Area: area, Date: day.DateKey(), Count: len(day.Records)}, nil
}

func (h *SubmitAttendanceHandler) resolveDate(raw string, now time.Time) (time.Time, error) {
	today := timeutil.Today(now, h.location)
	if raw == "" {
		return today, nil
	}
	date, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, shared.Validation("attendance", "Submit", shared.ErrInvalidDate, err.Error())
	}
	if timeutil.IsAfterDay(date, today) {
		return time.Time{}, shared.Validation("attendance", "Submit", shared.ErrFutureDate,
			"cannot record attendance for "+raw)
	}
	return date, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSubmitted
	case errors.Is(err, shared.ErrAlreadySubmitted):
		return OutcomeAlreadySubmitted
	case errors.Is(err, shared.ErrIncompleteRoster):
		return OutcomeIncompleteRoster
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrMisconfiguredIdentity):
		return OutcomeUnauthorized
	case shared.IsValidation(err):
		return OutcomeValidation
	case errors.Is(err, shared.ErrUnknownOutcome):
		return OutcomeUnknown
	case errors.Is(err, shared.ErrStorageUnavailable):
		return OutcomeStorageUnavailable
	default:
		return OutcomeError
	}
}
