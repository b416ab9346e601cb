package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// AuthService implements login and the self-service account endpoints.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	logger zerolog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error, and an unknown email still pays for a
// hash comparison. Lock and active state are only revealed once the
// password has been proven.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Compare(s.dummy(), password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.logger.Info().Str("user_id", user.ID).Msg("login rejected: bad password")
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if user.IsLocked(now) {
		return nil, domain.ErrAccountLocked
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	return s.users.FindByID(ctx, identity.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, identity domain.Identity, update ports.ProfileUpdate) (*domain.User, error) {
	return s.users.Update(ctx, identity.UserID, ports.UserUpdate{
		Name:   update.Name,
		Bio:    update.Bio,
		Avatar: update.Avatar,
	}, s.now().UTC())
}

func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.PasswordHash, currentPassword) {
		return domain.ErrIncorrectPassword
	}

	if len(newPassword) > domain.MaxPasswordBytes {
		return domain.PasswordTooLong("newPassword")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// dummy returns a throwaway hash used to equalize login timing for unknown
// emails.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("portfolio-login-placeholder")
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to build placeholder hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
