package resumes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"job-selector/internal/shared/telemetry"
	"job-selector/internal/shared/util"
)

// Service validates resume requests before they reach the store.
type Service struct {
	Repo Repo

	now   func() time.Time
	newID func() string
}

func NewService(repo Repo) *Service {
	return &Service{
		Repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, resumeID, userID string) (Resume, error) {
	if err := requireID("user id", userID); err != nil {
		return Resume{}, err
	}
	if err := requireID("resume id", resumeID); err != nil {
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, resumeID, userID)
}

// ListByRole matches job_role as a case-insensitive substring.
func (s *Service) ListByRole(ctx context.Context, role, userID string) ([]Resume, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return s.Repo.ListByRole(ctx, strings.TrimSpace(role), userID)
}

// ListByDate returns the user's resumes created on day (YYYY-MM-DD, UTC).
func (s *Service) ListByDate(ctx context.Context, day, userID string) ([]Resume, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	start, end, err := util.DayRange(day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.Repo.ListCreatedBetween(ctx, userID, start, end)
}

// Create stores payload for userID under a new resume id.
func (s *Service) Create(ctx context.Context, userID string, payload map[string]any) (Resume, error) {
	if err := requireID("user id", userID); err != nil {
		return Resume{}, err
	}
	if payload == nil {
		return Resume{}, fmt.Errorf("%w: resume data is required", ErrInvalidInput)
	}
	fields, err := cleanFields(payload)
	if err != nil {
		return Resume{}, err
	}
	jobRole, _ := jobRoleOf(fields)

	created, err := s.Repo.Create(ctx, Resume{
		ResumeID:  s.newID(),
		UserID:    userID,
		JobRole:   jobRole,
		Fields:    fields,
		CreatedAt: s.now(),
	})
	if err != nil {
		return Resume{}, err
	}
	telemetry.Info("resume.created", map[string]any{
		"resume_id":  created.ResumeID,
		"user_id":    userID,
		"storage_id": created.StorageID,
	})
	return created, nil
}

// Update merges fields into the resume and returns the number of modified resumes.
func (s *Service) Update(ctx context.Context, resumeID, userID string, fields map[string]any) (int64, error) {
	if err := requireID("user id", userID); err != nil {
		return 0, err
	}
	if err := requireID("resume id", resumeID); err != nil {
		return 0, err
	}
	if fields == nil {
		return 0, fmt.Errorf("%w: update data is required", ErrInvalidInput)
	}
	cleaned, err := cleanFields(fields)
	if err != nil {
		return 0, err
	}
	update := Update{Fields: cleaned, UpdatedAt: s.now()}
	if role, ok := jobRoleOf(cleaned); ok {
		update.JobRole = &role
	}
	return s.Repo.Update(ctx, resumeID, userID, update)
}

// Delete removes the resume and returns the number of deleted resumes.
func (s *Service) Delete(ctx context.Context, resumeID, userID string) (int64, error) {
	if err := requireID("user id", userID); err != nil {
		return 0, err
	}
	if err := requireID("resume id", resumeID); err != nil {
		return 0, err
	}
	return s.Repo.Delete(ctx, resumeID, userID)
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	return nil
}
