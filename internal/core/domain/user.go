package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// Title renders the role the way confirmations and notifications show it.
func (r Role) Title() string {
	if r == RoleAdmin {
		return "Admin"
	}
	return "User"
}

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the authenticated state hydrated on start and torn down on
// logout or on a 401 from the backend.
type Session struct {
	Token string `json:"token" yaml:"token"`
	User  User   `json:"user" yaml:"user"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == RoleAdmin
}
