package memory

import (
	"context"
	"time"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

// UserRepository implements ports.UserRepository on a Store.
type UserRepository struct {
	s *Store
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	for _, u := range r.s.users {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}

	stored := cloneUser(user)
	stored.ID = newID()
	stored.Email = email
	r.s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*domain.User
	for _, u := range r.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !containsFold(u.Name, f.Search) && !containsFold(u.Email, f.Search) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sortBy(matched, func(a, b *domain.User) bool { return a.CreatedAt.After(b.CreatedAt) })

	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *UserRepository) Update(_ context.Context, id string, upd ports.UserUpdate, now time.Time) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		email := domain.NormalizeEmail(*upd.Email)
		for otherID, other := range r.s.users {
			if otherID != id && other.Email == email {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *UserRepository) Unlock(_ context.Context, id string, now time.Time) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}
