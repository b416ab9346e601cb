package ports

import (
	"context"
	"time"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// ListUsersFilter carries the query parameters of the user admin listing.
type ListUsersFilter struct {
	Role   domain.Role // empty = any role
	Search string      // optional: partial match on name or email
	Page   int         // 1-based
	Limit  int
}

// UserUpdate is a partial update applied by an admin or by the user to
// their own profile. Nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	IsActive *bool
	Bio      *string
	Avatar   *string
}

// UserRepository defines the persistence contract for accounts.
type UserRepository interface {
	// Create inserts a user and returns it with its assigned ID. A duplicate
	// email yields domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, id string, update UserUpdate, now time.Time) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error
	// RecordLogin stamps lastLogin after a successful sign-in.
	RecordLogin(ctx context.Context, id string, at time.Time) error
	// Unlock clears the failed-login counter and lockUntil.
	Unlock(ctx context.Context, id string, now time.Time) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
