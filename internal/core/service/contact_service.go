package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const (
	defaultContactPageSize = 20
	maxContactPageSize     = 100
)

type contactService struct {
	repo  ports.ContactRepository
	queue ports.NotificationQueue
	log   zerolog.Logger
	now   func() time.Time
}

// NewContactService returns a ContactService implementation. queue may be
// nil, in which case no notification is sent.
func NewContactService(repo ports.ContactRepository, queue ports.NotificationQueue, log zerolog.Logger) ports.ContactService {
	return &contactService{repo: repo, queue: queue, log: log, now: time.Now}
}

// Submit stores a message from the public form and hands it to the
// notification queue. A full queue never fails the submission.
func (s *contactService) Submit(ctx context.Context, in ports.SubmitContactInput) (*domain.Contact, error) {
	now := s.now().UTC()
	c := &domain.Contact{
		Name:      strings.TrimSpace(in.Name),
		Email:     domain.NormalizeEmail(in.Email),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		Status:    domain.ContactNew,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("submit contact: %w", err)
	}

	if s.queue != nil && !s.queue.Enqueue(c) {
		s.log.Warn().Str("contact_id", c.ID).Msg("notification queue full, message not announced")
	}

	s.log.Info().Str("contact_id", c.ID).Msg("contact message received")
	return c, nil
}

func (s *contactService) List(ctx context.Context, filter ports.ListContactsFilter) (*ports.ListContactsResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit, defaultContactPageSize, maxContactPageSize)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	return &ports.ListContactsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *contactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	return s.repo.MarkAsRead(ctx, id, s.now().UTC())
}

func (s *contactService) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error) {
	return s.repo.UpdateStatus(ctx, id, status, s.now().UTC())
}

func (s *contactService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
