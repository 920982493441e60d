package auth

// Admin role constants.
const (
	RoleAuditor  = "auditor"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleAuditor, RoleOperator, RoleAdmin}
}

// WriteRoles returns roles that can change platform state.
func WriteRoles() []string {
	return []string{RoleOperator, RoleAdmin}
}
