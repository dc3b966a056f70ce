package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"job-selector/internal/shared/util"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

var _ Repo = (*MemoryRepo)(nil)

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	return r.filter(ctx, func(User) bool { return true })
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return public(user), nil
}

func (r *MemoryRepo) ListByRole(ctx context.Context, role string) ([]User, error) {
	return r.filter(ctx, func(u User) bool { return util.ContainsFold(u.Role, role) })
}

func (r *MemoryRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]User, error) {
	return r.filter(ctx, func(u User) bool {
		return !u.CreatedAt.Before(start) && u.CreatedAt.Before(end)
	})
}

func (r *MemoryRepo) GetLocalByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username && user.Provider == ProviderLocal {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if googleID != "" && user.GoogleID == googleID {
			return public(user), nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return ErrInvalidInput
	}
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
		if user.GoogleID != "" && existing.GoogleID == user.GoogleID {
			return errDuplicateGoogleID
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID string, changes Changes) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return 0, nil
	}
	if changes.Username != nil && *changes.Username != user.Username {
		for id, existing := range r.users {
			if id != userID && existing.Username == *changes.Username {
				return 0, ErrDuplicateUsername
			}
		}
		user.Username = *changes.Username
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}
	if changes.Role != nil {
		user.Role = *changes.Role
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.Name != nil {
		user.Name = *changes.Name
	}
	updatedAt := changes.UpdatedAt
	user.UpdatedAt = &updatedAt
	r.users[userID] = user
	return 1, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return 0, nil
	}
	delete(r.users, userID)
	return 1, nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(User) bool) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]User, 0, len(r.users))
	for _, user := range r.users {
		if keep(user) {
			out = append(out, public(user))
		}
	}
	r.mu.RUnlock()
	sortByCreated(out)
	return out, nil
}

// public strips the password hash from a stored user.
func public(user User) User {
	user.PasswordHash = ""
	return user
}

func sortByCreated(list []User) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
