package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const (
	defaultUserPageSize = 10
	maxUserPageSize     = 100
)

// UserService implements admin-side account management.
type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, logger: logger, now: time.Now}
}

func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	if len(input.Password) > domain.MaxPasswordBytes {
		return nil, domain.PasswordTooLong("password")
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Bio:          strings.TrimSpace(input.Bio),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// EnsureAdmin creates the bootstrap admin account when no account with
// email exists yet. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	if name == "" {
		name = "Administrator"
	}
	if _, err := s.CreateUser(ctx, ports.CreateUserInput{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit, defaultUserPageSize, maxUserPageSize)
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	if update.Email != nil {
		email := domain.NormalizeEmail(*update.Email)
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		update.Email = &email
	}

	updated, err := s.users.Update(ctx, id, update, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// DeleteUser removes an account. An admin cannot remove their own.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Identity, id string) error {
	if actor.UserID == id {
		return domain.ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Str("deleted_by", actor.UserID).Msg("user deleted")
	return nil
}

func (s *UserService) UnlockUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Unlock(ctx, id, s.now().UTC())
}

// ensureEmailFree fails with ErrEmailTaken when email belongs to an account
// other than ownerID. The unique index remains the final arbiter.
func (s *UserService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != ownerID:
		return domain.ErrEmailTaken
	default:
		return nil
	}
}
