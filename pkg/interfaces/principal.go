package interfaces

// RoleAdmin is the only role allowed to mutate portal content.
const RoleAdmin = "admin"

// Principal is the authenticated caller handed over by the host's session
// layer. The portal never authenticates, it only inspects the role.
type Principal struct {
	ID   string
	Role string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
