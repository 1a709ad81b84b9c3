package models

// Admin roles, ordered from most to least privileged
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleViewer     = "viewer"
)

// ValidRoles lists every role an admin account may hold
var ValidRoles = []string{RoleSuperAdmin, RoleAdmin, RoleModerator, RoleViewer}

// IsValidRole reports whether role is one of the known admin roles
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Marketplace user roles (the managed side of the marketplace)
const (
	UserRoleCustomer = "customer"
	UserRoleProvider = "provider"
	UserRoleMedia    = "media"
)

// Upgrade request states
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// SystemActor is recorded as the audit actor for actions not tied to an admin
const SystemActor = "system"
