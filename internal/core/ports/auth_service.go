package ports

import (
	"context"
	"time"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// PasswordHasher is the one-way transform applied to account passwords.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Compare(hash, raw string) bool
}

// TokenVerifier validates a bearer token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// TokenIssuer mints a signed session token for a user.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// ProfileUpdate holds the fields a user may change on their own account.
type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Avatar *string
}

// AuthService covers sign-in and self-service account operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, identity domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, identity domain.Identity, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error
}

// CreateUserInput is what an admin supplies to create an account.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
	Bio      string
}

// ListUsersResult is a page of users.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService covers admin-only account management.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, filter ListUsersFilter) (*ListUsersResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Identity, id string) error
	UnlockUser(ctx context.Context, id string) (*domain.User, error)
}
