package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether the given role is one the system recognises.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
