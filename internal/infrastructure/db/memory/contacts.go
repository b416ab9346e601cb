package memory

import (
	"context"
	"time"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// ContactRepository implements ports.ContactRepository on a Store.
type ContactRepository struct {
	s *Store
}

func cloneContact(c *domain.Contact) *domain.Contact {
	out := *c
	return &out
}

func (r *ContactRepository) Create(_ context.Context, c *domain.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = newID()
	r.s.contacts[c.ID] = cloneContact(c)
	return nil
}

func (r *ContactRepository) FindByID(_ context.Context, id string) (*domain.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	return cloneContact(c), nil
}

func (r *ContactRepository) List(_ context.Context, f ports.ListContactsFilter) ([]*domain.Contact, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*domain.Contact
	for _, c := range r.s.contacts {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		matched = append(matched, cloneContact(c))
	}
	sortBy(matched, func(a, b *domain.Contact) bool { return a.CreatedAt.After(b.CreatedAt) })

	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *ContactRepository) UpdateStatus(_ context.Context, id string, status domain.ContactStatus, now time.Time) (*domain.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	c.Status = status
	c.UpdatedAt = now
	return cloneContact(c), nil
}

func (r *ContactRepository) MarkAsRead(_ context.Context, id string, now time.Time) (*domain.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	if c.Status == domain.ContactNew {
		c.Status = domain.ContactRead
		c.UpdatedAt = now
	}
	return cloneContact(c), nil
}

func (r *ContactRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contacts[id]; !ok {
		return domain.ErrContactNotFound
	}
	delete(r.s.contacts, id)
	return nil
}
