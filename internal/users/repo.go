package users

import (
	"context"
	"time"
)

// Repo persists users. Read methods never return password hashes except
// GetLocalByUsername, which exists for credential checks.
type Repo interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]User, error)
	GetLocalByUsername(ctx context.Context, username string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, userID string, changes Changes) (int64, error)
	Delete(ctx context.Context, userID string) (int64, error)
}
