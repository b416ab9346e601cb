package ports

import (
	"context"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// SubmitContactInput is the DTO passed from the transport layer to ContactService.
type SubmitContactInput struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	IPAddress string
	UserAgent string
}

// ListContactsResult is a page of inbox messages.
type ListContactsResult struct {
	Items      []*domain.Contact
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ContactService manages the contact-form inbox.
type ContactService interface {
	Submit(ctx context.Context, input SubmitContactInput) (*domain.Contact, error)
	List(ctx context.Context, filter ListContactsFilter) (*ListContactsResult, error)
	// Get returns a message and marks it as read if it was new.
	Get(ctx context.Context, id string) (*domain.Contact, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ContactNotifier tells the site owner about a new message.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, c *domain.Contact) error
}

// NotificationQueue accepts notification jobs without blocking the caller.
type NotificationQueue interface {
	Enqueue(c *domain.Contact) bool
}
