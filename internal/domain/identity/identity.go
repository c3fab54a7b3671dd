// Package identity defines the authenticated caller as seen by the core.
// An Identity is produced once per request by the auth collaborator adapter
// and passed by value; it is never re-derived mid-request.
package identity

import (
	"strings"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
)

// Role is the caller's role claim.
type Role string

const (
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole normalizes a raw role claim. Unknown roles are returned as-is
// so that the access gate can reject them.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsAdmin reports whether the role operates across all areas.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsKnown reports whether r is one of the defined roles.
func (r Role) IsKnown() bool {
	return r == RoleTeacher || r.IsAdmin()
}

// Identity is the authenticated caller.
type Identity struct {
	UID  string
	Role Role
	// Area is the bound center for teachers; empty for admins.
	Area shared.Area
}

// Teacher builds a teacher identity bound to area.
func Teacher(uid string, area shared.Area) Identity {
	return Identity{UID: uid, Role: RoleTeacher, Area: area}
}

// Admin builds an admin identity.
func Admin(uid string) Identity {
	return Identity{UID: uid, Role: RoleAdmin}
}

// SuperAdmin builds a superadmin identity.
func SuperAdmin(uid string) Identity {
	return Identity{UID: uid, Role: RoleSuperAdmin}
}

// IsTeacher reports whether the identity carries the teacher role.
func (i Identity) IsTeacher() bool {
	return i.Role == RoleTeacher
}
