package command

import (
	"context"
	"time"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/pkg/logger"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the registration form.
type RegisterStudentCommand struct {
	Identity identity.Identity `validate:"-"`

	Area          string `validate:"required"`
	Name          string `validate:"required,max=200"`
	Age           *int   `validate:"omitempty,gte=0,lte=150"`
	AdmissionDate string `validate:"omitempty,datetime=2006-01-02"`
	DateOfBirth   string `validate:"omitempty,datetime=2006-01-02"`
	FatherName    string `validate:"omitempty,max=200"`
	MotherName    string `validate:"omitempty,max=200"`
	Contact       string `validate:"omitempty,max=32"`
	Address       string `validate:"omitempty,max=500"`
	Aadhaar       string `validate:"omitempty,max=20"`
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	return validateStruct("student", "Register", c)
}

// RegisterStudentResult contains the new student id.
type RegisterStudentResult struct {
	ID   string
	Area shared.Area
}

// RegisterStudentHandler handles RegisterStudentCommand.
type RegisterStudentHandler struct {
	gate     access.Gate
	students student.Repository
	cache    student.RosterCache
	policy   storecall.Policy
	clock    timeutil.Clock
	log      *logger.Logger
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
// cache may be nil.
func NewRegisterStudentHandler(
	students student.Repository,
	cache student.RosterCache,
	policy storecall.Policy,
	clock timeutil.Clock,
	log *logger.Logger,
) *RegisterStudentHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterStudentHandler{
		gate:     access.NewGate(),
		students: students,
		cache:    cache,
		policy:   policy,
		clock:    clock,
		log:      log.With(logger.Component("register_student")),
	}
}

// Handle executes the registration.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	area := shared.NormalizeArea(cmd.Area)
	if err := h.gate.Authorize(cmd.Identity, access.RegisterStudent, area); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	profile := student.Profile{
		Age:        cmd.Age,
		FatherName: cmd.FatherName,
		MotherName: cmd.MotherName,
		Contact:    cmd.Contact,
		Address:    cmd.Address,
		Aadhaar:    cmd.Aadhaar,
	}
	var err error
	if profile.AdmissionDate, err = optionalDate(cmd.AdmissionDate); err != nil {
		return nil, err
	}
	if profile.DateOfBirth, err = optionalDate(cmd.DateOfBirth); err != nil {
		return nil, err
	}

	s, err := student.NewStudent(cmd.Name, area, profile, h.clock())
	if err != nil {
		return nil, err
	}

	// A create is not idempotent; it runs once under the write deadline.
	id, err := storecall.Write(ctx, h.policy, "CreateStudent", func(ctx context.Context) (string, error) {
		return h.students.Create(ctx, s)
	})
	if err != nil {
		h.log.Error("failed to register student", logger.Area(string(area)), logger.Err(err))
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, area); err != nil {
			h.log.Warn("failed to invalidate roster cache", logger.Area(string(area)), logger.Err(err))
		}
	}

	h.log.Info("student registered",
		logger.Area(string(area)),
		logger.String("student_id", id),
		logger.UID(cmd.Identity.UID),
	)
	return &RegisterStudentResult{ID: id, Area: area}, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := timeutil.ParseDate(raw)
	if err != nil {
		return nil, shared.Validation("student", "Register", shared.ErrInvalidDate, err.Error())
	}
	return &t, nil
}
