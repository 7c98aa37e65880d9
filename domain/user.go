package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an identity issued by the external auth provider.
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
