package resumes

import (
	"context"
	"time"
)

// Repo persists resumes. Every lookup is scoped to the owning user.
type Repo interface {
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	GetByID(ctx context.Context, resumeID, userID string) (Resume, error)
	ListByRole(ctx context.Context, role, userID string) ([]Resume, error)
	ListCreatedBetween(ctx context.Context, userID string, start, end time.Time) ([]Resume, error)
	Create(ctx context.Context, resume Resume) (Resume, error)
	Update(ctx context.Context, resumeID, userID string, update Update) (int64, error)
	Delete(ctx context.Context, resumeID, userID string) (int64, error)
}

// Update is a cleaned field merge. JobRole is set when the merge touches job_role.
type Update struct {
	Fields    map[string]any
	JobRole   *string
	UpdatedAt time.Time
}
