package command

import (
	"context"
	"strings"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
	"github.com/satyalok/attendance-hub/pkg/logger"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER DIRECTORY COMMANDS
// Учётные данные создаются во внешнем сервисе аутентификации; здесь только
// запись в справочнике и привязка к области.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterTeacherCommand upserts a directory entry.
type RegisterTeacherCommand struct {
	Identity identity.Identity `validate:"-"`

	UID         string `validate:"required,max=128"`
	DisplayName string `validate:"required,max=200"`
	Email       string `validate:"omitempty,email"`
	Phone       string `validate:"omitempty,max=32"`
	Gender      string `validate:"omitempty,oneof=male female other Male Female Other"`
	JoinDate    string `validate:"omitempty,datetime=2006-01-02"`
	Area        string `validate:"required"`
}

// Validate validates the command.
func (c RegisterTeacherCommand) Validate() error {
	return validateStruct("teacher", "Register", c)
}

// RegisterTeacherResult echoes the stored entry.
type RegisterTeacherResult struct {
	Teacher *teacher.Teacher
}

// RemoveTeacherCommand removes a directory entry.
type RemoveTeacherCommand struct {
	Identity identity.Identity
	UID      string
}

// RemoveTeacherResult reports the outcome of the cleanup step.
type RemoveTeacherResult struct {
	UID string
	// CredentialsRevoked is false when the auth service call failed;
	// the directory entry is removed either way.
	CredentialsRevoked bool
}

// TeacherDirectoryHandler handles RegisterTeacherCommand and RemoveTeacherCommand.
type TeacherDirectoryHandler struct {
	gate     access.Gate
	teachers teacher.Repository
	revoker  teacher.CredentialRevoker
	policy   storecall.Policy
	clock    timeutil.Clock
	log      *logger.Logger
}

// NewTeacherDirectoryHandler creates a new TeacherDirectoryHandler.
// revoker may be nil, in which case credentials are never revoked.
func NewTeacherDirectoryHandler(
	teachers teacher.Repository,
	revoker teacher.CredentialRevoker,
	policy storecall.Policy,
	clock timeutil.Clock,
	log *logger.Logger,
) *TeacherDirectoryHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TeacherDirectoryHandler{
		gate:     access.NewGate(),
		teachers: teachers,
		revoker:  revoker,
		policy:   policy,
		clock:    clock,
		log:      log.With(logger.Component("teacher_directory")),
	}
}

// Register executes RegisterTeacherCommand.
func (h *TeacherDirectoryHandler) Register(ctx context.Context, cmd RegisterTeacherCommand) (*RegisterTeacherResult, error) {
	area := shared.NormalizeArea(cmd.Area)
	if err := h.gate.Authorize(cmd.Identity, access.ManageTeachers, area); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	t, err := teacher.NewTeacher(cmd.UID, cmd.DisplayName, cmd.Email, area, h.clock())
	if err != nil {
		return nil, err
	}
	t.Phone = strings.TrimSpace(cmd.Phone)
	t.Gender = strings.ToLower(cmd.Gender)
	if t.JoinDate, err = optionalDate(cmd.JoinDate); err != nil {
		return nil, err
	}

	// Upsert is idempotent, so transient failures may be retried.
	if _, err := storecall.Read(ctx, h.policy, "UpsertTeacher", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.teachers.Upsert(ctx, t)
	}); err != nil {
		h.log.Error("failed to register teacher", logger.UID(t.UID), logger.Err(err))
		return nil, err
	}

	h.log.Info("teacher registered",
		logger.UID(t.UID),
		logger.Area(string(area)),
		logger.String("by", cmd.Identity.UID),
	)
	return &RegisterTeacherResult{Teacher: t}, nil
}

// Remove executes RemoveTeacherCommand. The directory delete is the primary
// action; credential revocation is best effort and never fails the command.
func (h *TeacherDirectoryHandler) Remove(ctx context.Context, cmd RemoveTeacherCommand) (*RemoveTeacherResult, error) {
	if err := h.gate.Authorize(cmd.Identity, access.ManageTeachers, shared.AreaAll); err != nil {
		return nil, err
	}
	uid := strings.TrimSpace(cmd.UID)
	if uid == "" {
		return nil, shared.Validation("teacher", "Remove", shared.ErrEmptyValue, "uid is required")
	}

	if _, err := storecall.Write(ctx, h.policy, "DeleteTeacher", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.teachers.Delete(ctx, uid)
	}); err != nil {
		return nil, err
	}

	res := &RemoveTeacherResult{UID: uid}
	if h.revoker != nil {
		if err := h.revoker.RevokeCredentials(ctx, uid); err != nil {
			h.log.Warn("failed to revoke teacher credentials", logger.UID(uid), logger.Err(err))
		} else {
			res.CredentialsRevoked = true
		}
	}

	h.log.Info("teacher removed",
		logger.UID(uid),
		logger.Bool("credentials_revoked", res.CredentialsRevoked),
		logger.String("by", cmd.Identity.UID),
	)
	return res, nil
}
