// Package teacher содержит справочник учителей.
// Учётные данные выдаются внешним сервисом аутентификации; здесь хранится
// только профиль и привязка к области.
package teacher

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// Teacher is a directory entry for a teacher account.
type Teacher struct {
	UID         string
	DisplayName string
	Email       string
	Phone       string
	Gender      string
	JoinDate    *time.Time
	Area        shared.Area
	Active      bool
	CreatedAt   time.Time
}

// NewTeacher validates the profile of a teacher bound to area.
func NewTeacher(uid, displayName, email string, area shared.Area, now time.Time) (*Teacher, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, shared.Validation("teacher", "Register", shared.ErrEmptyValue, "uid is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, shared.Validation("teacher", "Register", shared.ErrEmptyValue, "display name is required")
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, shared.Validation("teacher", "Register", shared.ErrValidation, "invalid email")
		}
	}
	if !area.IsCenter() {
		return nil, shared.Validation("teacher", "Register", shared.ErrInvalidArea, "teacher must be bound to a center")
	}

	return &Teacher{
		UID:         uid,
		DisplayName: displayName,
		Email:       strings.ToLower(email),
		Area:        area,
		Active:      true,
		CreatedAt:   now.UTC(),
	}, nil
}

// Repository is the teacher directory store.
type Repository interface {
	// Upsert creates or replaces the entry keyed by UID.
	Upsert(ctx context.Context, t *Teacher) error

	// List returns teachers of area, or of every area for shared.AreaAll,
	// ordered by area then display name.
	List(ctx context.Context, area shared.Area) ([]*Teacher, error)

	// Delete removes the entry; shared.ErrNotFound when absent.
	Delete(ctx context.Context, uid string) error

	// CountByArea returns the number of active teachers per area.
	CountByArea(ctx context.Context) (map[shared.Area]int, error)
}

// CredentialRevoker removes sign-in credentials at the auth service.
type CredentialRevoker interface {
	RevokeCredentials(ctx context.Context, uid string) error
}
