package ports

import (
	"context"
	"time"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// ListContactsFilter carries the query parameters of the inbox listing.
type ListContactsFilter struct {
	Status domain.ContactStatus // empty = any
	Page   int
	Limit  int
}

// ContactRepository handles inbox persistence.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	FindByID(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context, filter ListContactsFilter) ([]*domain.Contact, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus, now time.Time) (*domain.Contact, error)
	// MarkAsRead moves a message from new to read. Messages in any other
	// status are returned unchanged.
	MarkAsRead(ctx context.Context, id string, now time.Time) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}
