package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

const userColumns = `user_id, username, role, auth_provider, google_id, email, name, created_at, updated_at`

func (r *PGRepo) List(ctx context.Context) ([]User, error) {
	const query = `SELECT ` + userColumns + `
FROM users
ORDER BY created_at, user_id`
	return r.query(ctx, query)
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `SELECT ` + userColumns + `
FROM users
WHERE user_id = $1
LIMIT 1`
	return r.queryOne(ctx, query, userID)
}

func (r *PGRepo) ListByRole(ctx context.Context, role string) ([]User, error) {
	const query = `SELECT ` + userColumns + `
FROM users
WHERE strpos(lower(role), lower($1)) > 0
ORDER BY created_at, user_id`
	return r.query(ctx, query, role)
}

func (r *PGRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]User, error) {
	const query = `SELECT ` + userColumns + `
FROM users
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at, user_id`
	return r.query(ctx, query, start.UTC(), end.UTC())
}

func (r *PGRepo) GetLocalByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT user_id, username, password_hash, role, auth_provider
FROM users
WHERE username = $1 AND auth_provider = 'local'
LIMIT 1`
	var user User
	var hash sql.NullString
	var provider string
	err := r.DB.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&hash,
		&user.Role,
		&provider,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Provider = AuthProvider(provider)
	if hash.Valid {
		user.PasswordHash = hash.String
	}
	return user, nil
}

func (r *PGRepo) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	const query = `SELECT ` + userColumns + `
FROM users
WHERE google_id = $1
LIMIT 1`
	return r.queryOne(ctx, query, googleID)
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (user_id, username, password_hash, role, auth_provider, google_id, email, name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		nullableString(user.PasswordHash),
		user.Role,
		string(user.Provider),
		nullableString(user.GoogleID),
		nullableString(user.Email),
		nullableString(user.Name),
		user.CreatedAt.UTC(),
	)
	return mapPGError(err)
}

func (r *PGRepo) Update(ctx context.Context, userID string, changes Changes) (int64, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if changes.Username != nil {
		add("username", *changes.Username)
	}
	if changes.PasswordHash != nil {
		add("password_hash", *changes.PasswordHash)
	}
	if changes.Role != nil {
		add("role", *changes.Role)
	}
	if changes.Email != nil {
		add("email", nullableString(*changes.Email))
	}
	if changes.Name != nil {
		add("name", nullableString(*changes.Name))
	}
	add("updated_at", changes.UpdatedAt.UTC())
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE user_id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapPGError(err)
	}
	return res.RowsAffected()
}

func (r *PGRepo) Delete(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM users WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (r *PGRepo) queryOne(ctx context.Context, query string, args ...any) (User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var user User
	var provider string
	var googleID sql.NullString
	var email sql.NullString
	var name sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&provider,
		&googleID,
		&email,
		&name,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Provider = AuthProvider(provider)
	user.GoogleID = googleID.String
	user.Email = email.String
	user.Name = name.String
	user.CreatedAt = user.CreatedAt.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		user.UpdatedAt = &t
	}
	return user, nil
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return ErrDuplicateUsername
		case strings.Contains(pgErr.ConstraintName, "google_id"):
			return errDuplicateGoogleID
		}
	}
	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
