package auth

import "strings"

// Role represents an access tier issued by the backend.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability represents a discrete area of the application shell.
type Capability string

const (
	CapDashboard   Capability = "dashboard.view"
	CapAssessments Capability = "assessments.take"
	CapAdminPanel  Capability = "admin.panel"
)

// capabilityRoles maps each capability to the roles permitted to access it.
// Admins are granted every capability regardless of this table.
var capabilityRoles = map[Capability][]Role{
	CapDashboard:   {RoleUser},
	CapAssessments: {RoleUser},
	CapAdminPanel:  {},
}

// NormalizeRole maps arbitrary role strings onto a known Role, defaulting to user.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Allows reports whether role is granted capability.
func Allows(role Role, capability Capability) bool {
	if role == RoleAdmin {
		return true
	}
	for _, r := range capabilityRoles[capability] {
		if r == role {
			return true
		}
	}
	return false
}
