package models

// Role is the authenticated user's role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Identity is the authenticated user principal returned by the remote API
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the identity has the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
