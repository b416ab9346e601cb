package domain

import "time"

// ContactStatus tracks how far an inbox message has been handled.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

func ParseContactStatus(s string) (ContactStatus, bool) {
	switch ContactStatus(s) {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return ContactStatus(s), true
	default:
		return "", false
	}
}

// Contact is a message left by an anonymous visitor.
type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	IPAddress string        `json:"ipAddress,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
