package resumes

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"job-selector/internal/shared/util"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	seq     int64
	resumes map[string]Resume
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{resumes: make(map[string]Resume)}
}

var _ Repo = (*MemoryRepo)(nil)

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	return r.filter(ctx, userID, func(Resume) bool { return true })
}

func (r *MemoryRepo) GetByID(ctx context.Context, resumeID, userID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return cloneResume(resume), nil
}

func (r *MemoryRepo) ListByRole(ctx context.Context, role, userID string) ([]Resume, error) {
	return r.filter(ctx, userID, func(res Resume) bool { return util.ContainsFold(res.JobRole, role) })
}

func (r *MemoryRepo) ListCreatedBetween(ctx context.Context, userID string, start, end time.Time) ([]Resume, error) {
	return r.filter(ctx, userID, func(res Resume) bool {
		return !res.CreatedAt.Before(start) && res.CreatedAt.Before(end)
	})
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resumes[resume.ResumeID]; ok {
		return Resume{}, ErrInvalidInput
	}
	r.seq++
	resume.StorageID = strconv.FormatInt(r.seq, 10)
	r.resumes[resume.ResumeID] = cloneResume(resume)
	return resume, nil
}

func (r *MemoryRepo) Update(ctx context.Context, resumeID, userID string, update Update) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return 0, nil
	}
	resume = cloneResume(resume)
	for k, v := range update.Fields {
		resume.Fields[k] = v
	}
	if update.JobRole != nil {
		resume.JobRole = *update.JobRole
	}
	at := update.UpdatedAt
	resume.UpdatedAt = &at
	r.resumes[resumeID] = resume
	return 1, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, resumeID, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[resumeID]
	if !ok || resume.UserID != userID {
		return 0, nil
	}
	delete(r.resumes, resumeID)
	return 1, nil
}

func (r *MemoryRepo) filter(ctx context.Context, userID string, keep func(Resume) bool) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Resume{}
	for _, resume := range r.resumes {
		if resume.UserID == userID && keep(resume) {
			out = append(out, cloneResume(resume))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ResumeID < out[j].ResumeID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func cloneResume(resume Resume) Resume {
	fields := make(map[string]any, len(resume.Fields))
	for k, v := range resume.Fields {
		fields[k] = v
	}
	resume.Fields = fields
	if resume.UpdatedAt != nil {
		at := *resume.UpdatedAt
		resume.UpdatedAt = &at
	}
	return resume
}
