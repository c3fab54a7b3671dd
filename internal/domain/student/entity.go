// Package student содержит доменную модель ученика центра.
// Ученик принадлежит ровно одной области и не изменяется после регистрации.
package student

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Student is a registered learner of one center.
type Student struct {
	ID            string
	Name          string
	Age           *int
	AdmissionDate *time.Time
	FatherName    string
	MotherName    string
	Contact       string
	Address       string
	Aadhaar       string
	DateOfBirth   *time.Time
	Area          shared.Area
	CreatedAt     time.Time
}

// Profile holds the optional registration fields.
type Profile struct {
	Age           *int
	AdmissionDate *time.Time
	FatherName    string
	MotherName    string
	Contact       string
	Address       string
	Aadhaar       string
	DateOfBirth   *time.Time
}

// NewStudent validates input and builds a Student with a fresh id.
func NewStudent(name string, area shared.Area, profile Profile, now time.Time) (*Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validation("student", "Create", shared.ErrEmptyValue, "name is required")
	}
	if !area.IsCenter() {
		return nil, shared.Validation("student", "Create", shared.ErrInvalidArea, "area must be one of the centers")
	}
	if profile.Age != nil && (*profile.Age < 0 || *profile.Age > 150) {
		return nil, shared.Validation("student", "Create", shared.ErrValidation, "age out of range")
	}

	return &Student{
		ID:            uuid.NewString(),
		Name:          name,
		Age:           profile.Age,
		AdmissionDate: profile.AdmissionDate,
		FatherName:    strings.TrimSpace(profile.FatherName),
		MotherName:    strings.TrimSpace(profile.MotherName),
		Contact:       strings.TrimSpace(profile.Contact),
		Address:       strings.TrimSpace(profile.Address),
		Aadhaar:       strings.TrimSpace(profile.Aadhaar),
		DateOfBirth:   profile.DateOfBirth,
		Area:          area,
		CreatedAt:     now.UTC(),
	}, nil
}

// Less orders a roster: oldest registration first, id as tie-break.
func Less(a, b *Student) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
