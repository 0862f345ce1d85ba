package domain

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Role   UserRole
}

// IsAdmin reports whether the principal may run jobs and publish events.
func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
