package models

// Role is the authorization role of an identity.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleLecturer Role = "Lecturer"
	RoleStudent  Role = "Student"
)

// Known reports whether r is one of the fixed platform roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleLecturer, RoleStudent:
		return true
	}
	return false
}

// Identity is the user record the server returns alongside a token.
type Identity struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Role         Role   `json:"role"`
	StudentCode  string `json:"studentCode,omitempty"`
	LecturerCode string `json:"lecturerCode,omitempty"`
}

// IsZero reports whether no identity is set.
func (i Identity) IsZero() bool {
	return i.ID == 0 && i.Email == "" && i.Role == ""
}

// Credential is the bearer token together with the identity it belongs to.
type Credential struct {
	Token string
	User  Identity
}

// Valid reports whether both halves of the credential are present.
func (c Credential) Valid() bool {
	return c.Token != "" && !c.User.IsZero()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expiresAt"`
	User      Identity `json:"user"`
}
