package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var userRowColumns = []string{"user_id", "username", "role", "auth_provider", "google_id", "email", "name", "created_at", "updated_at"}

func TestPGRepoCreateLocalUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "alice", "hash", RoleUser, "local", nil, nil, nil, created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         RoleUser,
		Provider:     ProviderLocal,
		CreatedAt:    created,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolations(t *testing.T) {
	cases := map[string]error{
		"users_username_key":  ErrDuplicateUsername,
		"users_google_id_key": errDuplicateGoogleID,
	}
	for constraint, want := range cases {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})

		err := repo.Create(context.Background(), User{ID: "u1", Username: "alice", Provider: ProviderLocal})
		if !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", constraint, want, err)
		}
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM users").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByRoleUsesLiteralMatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("strpos(lower(role), lower($1)) > 0")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "alice", "admin", "local", nil, "a@example.com", nil, created, updated).
			AddRow("u2", "g@example.com", "super-admin", "google", "g-1", "g@example.com", "G", created, nil))

	list, err := repo.ListByRole(context.Background(), "admin")
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
	if list[0].Email != "a@example.com" || list[0].UpdatedAt == nil || !list[0].UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected first user %+v", list[0])
	}
	if list[1].Provider != ProviderGoogle || list[1].GoogleID != "g-1" || list[1].UpdatedAt != nil {
		t.Fatalf("unexpected second user %+v", list[1])
	}
	if list[0].PasswordHash != "" || list[1].PasswordHash != "" {
		t.Fatalf("list must not expose password hashes")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListCreatedBetween(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("created_at >= $1 AND created_at < $2")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	list, err := repo.ListCreatedBetween(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ListCreatedBetween: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestPGRepoGetLocalByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("auth_provider = 'local'")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password_hash", "role", "auth_provider"}).
			AddRow("u1", "alice", "hash", "user", "local"))

	user, err := repo.GetLocalByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetLocalByUsername: %v", err)
	}
	if user.PasswordHash != "hash" || user.Provider != ProviderLocal {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestPGRepoUpdateBuildsSetClause(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	username := "alice2"
	role := "admin"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username = $1, role = $2, updated_at = $3 WHERE user_id = $4")).
		WithArgs(username, role, at, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Update(context.Background(), "u1", Changes{Username: &username, Role: &role, UpdatedAt: at})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestPGRepoDeleteReturnsCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM users").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Delete(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}
