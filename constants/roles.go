package constants

// Roles carried in JWT claims and checked by the auth middleware.
const (
	RoleSuperuser = "superuser"
	RoleAdmin     = "admin"
	RoleStaff     = "staff"

	// Special role: any authenticated user
	RoleAny = "any"
)

// Role groups for convenience
var (
	ManagementRoles = []string{
		RoleSuperuser,
		RoleAdmin,
		RoleStaff,
	}
)
