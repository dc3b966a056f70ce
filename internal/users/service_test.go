package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-selector/internal/shared/auth"
)

type fakeVerifier struct {
	claims GoogleClaims
	err    error
	calls  int
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (GoogleClaims, error) {
	f.calls++
	return f.claims, f.err
}

func newTestService(t *testing.T, google IDTokenVerifier) *Service {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour, "dev")
	require.NoError(t, err)
	return NewService(NewMemoryRepo(), issuer, google)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, RoleUser, created.Role)

	identity, err := svc.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: created.UserID, Username: "alice", Role: RoleUser}, identity)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := svc.GetByID(ctx, created.UserID)
	require.NoError(t, err)
	assert.Empty(t, stored.PasswordHash)
	assert.Equal(t, ProviderLocal, stored.Provider)
	assert.Nil(t, stored.UpdatedAt)
}

func TestRegisterRejectsDuplicateAndMissingFields(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = svc.Register(ctx, RegisterInput{Username: " ", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticateWithGoogleCreatesOnce(t *testing.T) {
	verifier := &fakeVerifier{claims: GoogleClaims{Subject: "g-1", Email: "dana@example.com", Name: "Dana"}}
	svc := newTestService(t, verifier)
	ctx := context.Background()

	first, err := svc.AuthenticateWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", first.Username)
	assert.Equal(t, RoleUser, first.Role)

	second, err := svc.AuthenticateWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ProviderGoogle, all[0].Provider)
	assert.Equal(t, "Dana", all[0].Name)

	// Google accounts cannot sign in with a password.
	_, err = svc.Authenticate(ctx, "dana@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateWithGoogleRejectsBadToken(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("audience mismatch")}
	svc := newTestService(t, verifier)

	_, err := svc.AuthenticateWithGoogle(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateWithGoogle(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, verifier.calls)
}

func TestLoginFederatedEmailTakenByLocalAccount(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "erin@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.LoginFederated(ctx, GoogleClaims{Subject: "g-2", Email: "erin@example.com"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t, &fakeVerifier{claims: GoogleClaims{Subject: "g-1", Email: "g@example.com"}})
	ctx := context.Background()
	local, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	password := "newpass"
	n, err := svc.Update(ctx, local.UserID, UserPatch{Password: &password})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Authenticate(ctx, "alice", "newpass")
	require.NoError(t, err)
	stored, _ := svc.GetByID(ctx, local.UserID)
	assert.NotNil(t, stored.UpdatedAt)

	n, err = svc.Update(ctx, "missing", UserPatch{Password: &password})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = svc.Update(ctx, local.UserID, UserPatch{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	empty := " "
	_, err = svc.Update(ctx, local.UserID, UserPatch{Username: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	google, err := svc.AuthenticateWithGoogle(ctx, "token")
	require.NoError(t, err)
	_, err = svc.Update(ctx, google.UserID, UserPatch{Password: &password})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListByDateRejectsBadFormat(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.ListByDate(context.Background(), "05-01-2024")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTokens(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	created, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	token, err := svc.GenerateToken(created.UserID)
	require.NoError(t, err)

	userID, err := svc.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, userID)

	user, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.DecodeToken(token + "x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	orphan, err := svc.GenerateToken("ghost")
	require.NoError(t, err)
	_, err = svc.UserFromToken(ctx, orphan)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	created, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	n, err := svc.Delete(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Delete(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
