package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles the authorization gate understands.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts raw input into a Role. Unknown values are rejected so a
// typo can never produce a role that silently bypasses a check.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Satisfies reports whether r is allowed through a gate that requires
// required. Admin satisfies every requirement; user satisfies only user.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case RoleAdmin:
		return r == RoleAdmin
	case RoleUser:
		return r == RoleUser || r == RoleAdmin
	default:
		return false
	}
}

// User models an account that can sign in.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"isActive"`
	Bio           string     `json:"bio,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	LoginAttempts int        `json:"loginAttempts"`
	LockUntil     *time.Time `json:"lockUntil,omitempty"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin is nil-safe so optional-auth handlers can call it unconditionally.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
