// Package access implements the area-scoped authorization gate.
// Every operation passes through Authorize before reaching an engine.
package access

import (
	"github.com/satyalok/attendance-hub/internal/domain/identity"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// Operation is an action a caller wants to perform against an area.
type Operation string

const (
	ReadRoster       Operation = "read_roster"
	RegisterStudent  Operation = "register_student"
	SubmitAttendance Operation = "submit_attendance"
	ReadAttendance   Operation = "read_attendance"
	ReadReport       Operation = "read_report"
	ManageTeachers   Operation = "manage_teachers"
	ReadDashboard    Operation = "read_dashboard"
)

// adminOnly operations are never available to teachers, whatever the area.
var adminOnly = map[Operation]bool{
	ManageTeachers: true,
	ReadDashboard:  true,
}

// Gate is a stateless authorization predicate. The zero value is ready to use
// and safe for concurrent use.
type Gate struct{}

// NewGate returns a Gate.
func NewGate() Gate { return Gate{} }

// Authorize returns nil when id may perform op against target.
//
// Errors:
//   - ErrMisconfiguredIdentity: teacher without a valid bound center
//   - ErrUnauthorized: role/area mismatch or unknown role
//   - ErrInvalidArea: admin targeting a name that is neither a center nor All
func (Gate) Authorize(id identity.Identity, op Operation, target shared.Area) error {
	switch {
	case id.IsTeacher():
		if id.Area == "" {
			return shared.ErrTeacherWithoutArea
		}
		if !id.Area.IsCenter() {
			return shared.NewDomainError("access", "Authorize", shared.ErrMisconfiguredIdentity,
				"teacher is bound to unknown area "+string(id.Area))
		}
		if adminOnly[op] {
			return shared.ErrRoleNotPermitted
		}
		if target != id.Area {
			return shared.ErrAreaMismatch
		}
		return nil

	case id.Role.IsAdmin():
		if target == "" || target.IsAll() || target.IsCenter() {
			return nil
		}
		return shared.Validation("access", "Authorize", shared.ErrInvalidArea, "unknown area "+string(target))

	default:
		return shared.NewDomainError("access", "Authorize", shared.ErrUnauthorized, "unknown role "+string(id.Role))
	}
}
