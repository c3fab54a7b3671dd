package query

import (
	"context"

	"github.com/satyalok/attendance-hub/internal/application/storecall"
	"github.com/satyalok/attendance-hub/internal/domain/access"
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/teacher"
)

// ListTeachersQuery lists the directory for an area or for All.
type ListTeachersQuery struct {
	Identity identity.Identity
	// Area defaults to All when empty.
	Area string
}

// ListTeachersHandler handles ListTeachersQuery.
type ListTeachersHandler struct {
	gate     access.Gate
	teachers teacher.Repository
	policy   storecall.Policy
}

// NewListTeachersHandler creates a new ListTeachersHandler.
func NewListTeachersHandler(teachers teacher.Repository, policy storecall.Policy) *ListTeachersHandler {
	return &ListTeachersHandler{gate: access.NewGate(), teachers: teachers, policy: policy}
}

// Handle executes the query.
func (h *ListTeachersHandler) Handle(ctx context.Context, q ListTeachersQuery) ([]*teacher.Teacher, error) {
	area := shared.AreaAll
	if q.Area != "" {
		area = shared.NormalizeArea(q.Area)
	}
	if err := h.gate.Authorize(q.Identity, access.ManageTeachers, area); err != nil {
		return nil, err
	}

	return storecall.Read(ctx, h.policy, "ListTeachers", func(ctx context.Context) ([]*teacher.Teacher, error) {
		return h.teachers.List(ctx, area)
	})
}
