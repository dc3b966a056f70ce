package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

const resumeColumns = `id, resume_id, user_id, job_role, fields, created_at, updated_at`

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	const query = `SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY created_at, resume_id`
	return r.query(ctx, query, userID)
}

func (r *PGRepo) GetByID(ctx context.Context, resumeID, userID string) (Resume, error) {
	const query = `SELECT ` + resumeColumns + `
FROM resumes
WHERE resume_id = $1 AND user_id = $2
LIMIT 1`
	resume, err := scanResume(r.DB.QueryRowContext(ctx, query, resumeID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) ListByRole(ctx context.Context, role, userID string) ([]Resume, error) {
	const query = `SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1 AND strpos(lower(job_role), lower($2)) > 0
ORDER BY created_at, resume_id`
	return r.query(ctx, query, userID, role)
}

func (r *PGRepo) ListCreatedBetween(ctx context.Context, userID string, start, end time.Time) ([]Resume, error) {
	const query = `SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at, resume_id`
	return r.query(ctx, query, userID, start.UTC(), end.UTC())
}

func (r *PGRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	const query = `
INSERT INTO resumes (resume_id, user_id, job_role, fields, created_at, updated_at)
VALUES ($1, $2, $3, $4::jsonb, $5, NULL)
RETURNING id`
	fields, err := marshalFields(resume.Fields)
	if err != nil {
		return Resume{}, err
	}
	var id int64
	err = r.DB.QueryRowContext(ctx, query,
		resume.ResumeID,
		resume.UserID,
		resume.JobRole,
		fields,
		resume.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return Resume{}, err
	}
	resume.StorageID = strconv.FormatInt(id, 10)
	return resume, nil
}

func (r *PGRepo) Update(ctx context.Context, resumeID, userID string, update Update) (int64, error) {
	const query = `
UPDATE resumes
SET fields = fields || $1::jsonb,
    job_role = COALESCE($2, job_role),
    updated_at = $3
WHERE resume_id = $4 AND user_id = $5`
	fields, err := marshalFields(update.Fields)
	if err != nil {
		return 0, err
	}
	var jobRole any
	if update.JobRole != nil {
		jobRole = *update.JobRole
	}
	res, err := r.DB.ExecContext(ctx, query, fields, jobRole, update.UpdatedAt.UTC(), resumeID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) Delete(ctx context.Context, resumeID, userID string) (int64, error) {
	const query = `DELETE FROM resumes WHERE resume_id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, resumeID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Resume, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(row scanner) (Resume, error) {
	var resume Resume
	var id int64
	var fields []byte
	var updatedAt sql.NullTime
	err := row.Scan(
		&id,
		&resume.ResumeID,
		&resume.UserID,
		&resume.JobRole,
		&fields,
		&resume.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	resume.StorageID = strconv.FormatInt(id, 10)
	resume.CreatedAt = resume.CreatedAt.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		resume.UpdatedAt = &t
	}
	resume.Fields = map[string]any{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &resume.Fields); err != nil {
			return Resume{}, fmt.Errorf("decode resume fields: %w", err)
		}
	}
	return resume, nil
}

func marshalFields(fields map[string]any) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode resume fields: %w", err)
	}
	return string(raw), nil
}
