package users

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedUser(t *testing.T, repo *MemoryRepo, id, username, role string, created time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), User{
		ID:           id,
		Username:     username,
		PasswordHash: "hash",
		Role:         role,
		Provider:     ProviderLocal,
		CreatedAt:    created,
	})
	if err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
}

func TestMemoryRepoHidesPasswordHash(t *testing.T) {
	repo := NewMemoryRepo()
	seedUser(t, repo, "u1", "alice", RoleUser, time.Now().UTC())

	got, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatalf("expected hash stripped")
	}
	local, err := repo.GetLocalByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get local: %v", err)
	}
	if local.PasswordHash != "hash" {
		t.Fatalf("credential lookup must carry the hash")
	}
}

func TestMemoryRepoRoleFilterIsLiteralSubstring(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	seedUser(t, repo, "u1", "alice", "Admin", now)
	seedUser(t, repo, "u2", "bob", "user", now.Add(time.Second))
	seedUser(t, repo, "u3", "carol", "super.admin", now.Add(2*time.Second))

	list, err := repo.ListByRole(context.Background(), "ADMIN")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "u1" || list[1].ID != "u3" {
		t.Fatalf("unexpected result %+v", list)
	}

	list, err = repo.ListByRole(context.Background(), ".")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "u3" {
		t.Fatalf("dot must match literally, got %+v", list)
	}
}

func TestMemoryRepoCreatedBetween(t *testing.T) {
	repo := NewMemoryRepo()
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	seedUser(t, repo, "u1", "alice", RoleUser, day.Add(-time.Nanosecond))
	seedUser(t, repo, "u2", "bob", RoleUser, day)
	seedUser(t, repo, "u3", "carol", RoleUser, day.Add(24*time.Hour-time.Second))
	seedUser(t, repo, "u4", "dave", RoleUser, day.Add(24*time.Hour))

	list, err := repo.ListCreatedBetween(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "u2" || list[1].ID != "u3" {
		t.Fatalf("unexpected result %+v", list)
	}
}

func TestMemoryRepoUniqueness(t *testing.T) {
	repo := NewMemoryRepo()
	seedUser(t, repo, "u1", "alice", RoleUser, time.Now().UTC())

	err := repo.Create(context.Background(), User{ID: "u2", Username: "alice", PasswordHash: "x", Provider: ProviderLocal})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username, got %v", err)
	}

	seedUser(t, repo, "u2", "bob", RoleUser, time.Now().UTC())
	name := "alice"
	if _, err := repo.Update(context.Background(), "u2", Changes{Username: &name, UpdatedAt: time.Now()}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username on rename, got %v", err)
	}
}

func TestMemoryRepoUpdateAndDeleteCounts(t *testing.T) {
	repo := NewMemoryRepo()
	seedUser(t, repo, "u1", "alice", RoleUser, time.Now().UTC())
	ctx := context.Background()

	role := "admin"
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	n, err := repo.Update(ctx, "u1", Changes{Role: &role, UpdatedAt: at})
	if err != nil || n != 1 {
		t.Fatalf("update: n=%d err=%v", n, err)
	}
	got, _ := repo.GetByID(ctx, "u1")
	if got.Role != "admin" || got.UpdatedAt == nil || !got.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected user %+v", got)
	}

	if n, _ := repo.Update(ctx, "missing", Changes{Role: &role}); n != 0 {
		t.Fatalf("expected 0 for missing user, got %d", n)
	}
	if n, _ := repo.Delete(ctx, "u1"); n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	if n, _ := repo.Delete(ctx, "u1"); n != 0 {
		t.Fatalf("expected idempotent delete, got %d", n)
	}
}

func TestMemoryRepoHonorsCanceledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
