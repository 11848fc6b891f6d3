package domain

// Caller roles. The identity provider is external; handlers trust the
// role it supplies.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Actor identifies the caller of an operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ValidRole reports whether r is a known caller role.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanApprove reports whether the actor may decide loan requests.
func (a Actor) CanApprove() bool {
	return a.Role == RoleTeacher || a.Role == RoleAdmin
}

// IsAdmin reports whether the actor has the administrator role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
