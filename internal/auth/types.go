package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the coarse permission tier carried in access-token claims.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleNGO     Role = "NGO"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes and validates a role value supplied by a caller.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleCitizen:
		return RoleCitizen, nil
	case RoleNGO:
		return RoleNGO, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// User is an identity record. PasswordHash never leaves the auth package;
// external responses go through View.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

// UserView is the externally visible shape of a user.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// View strips the password hash.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken is a persisted session-continuation record. The opaque token
// value is both the lookup key and the bearer secret.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
