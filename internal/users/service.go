package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"job-selector/internal/shared/auth"
	"job-selector/internal/shared/telemetry"
	"job-selector/internal/shared/util"
)

// IDTokenVerifier checks a Google ID token and returns its verified claims.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleClaims, error)
}

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	Generate(userID string) (string, error)
	Verify(token string) (auth.Claims, error)
}

type Service struct {
	Repo   Repo
	Tokens TokenIssuer
	Google IDTokenVerifier

	now   func() time.Time
	newID func() string
}

func NewService(repo Repo, tokens TokenIssuer, google IDTokenVerifier) *Service {
	return &Service{
		Repo:   repo,
		Tokens: tokens,
		Google: google,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// RegisterInput carries the fields of a new local account.
type RegisterInput struct {
	Username string
	Password string
	Role     string
	Email    string
	Name     string
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.Repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// ListByRole matches role as a case-insensitive substring.
func (s *Service) ListByRole(ctx context.Context, role string) ([]User, error) {
	return s.Repo.ListByRole(ctx, strings.TrimSpace(role))
}

// ListByDate returns users created on day (YYYY-MM-DD, UTC).
func (s *Service) ListByDate(ctx context.Context, day string) ([]User, error) {
	start, end, err := util.DayRange(day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.Repo.ListCreatedBetween(ctx, start, end)
}

// Register creates a local account and returns its identity.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Identity, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return Identity{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = RoleUser
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Identity{}, err
	}

	user := User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Provider:     ProviderLocal,
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		CreatedAt:    s.now(),
	}
	if err := user.Validate(); err != nil {
		return Identity{}, err
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return Identity{}, err
	}
	telemetry.Info("user.registered", map[string]any{"user_id": user.ID, "provider": string(user.Provider)})
	return user.identity(), nil
}

// Authenticate checks a local username and password. Unknown users and
// wrong passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	user, err := s.Repo.GetLocalByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Identity{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return user.identity(), nil
}

// AuthenticateWithGoogle verifies idToken and signs in the matching account,
// creating it on first use.
func (s *Service) AuthenticateWithGoogle(ctx context.Context, idToken string) (Identity, error) {
	if s.Google == nil || strings.TrimSpace(idToken) == "" {
		return Identity{}, ErrInvalidCredentials
	}
	claims, err := s.Google.Verify(ctx, idToken)
	if err != nil {
		telemetry.Warn("user.google_verify_failed", map[string]any{"error": err})
		return Identity{}, ErrInvalidCredentials
	}
	return s.LoginFederated(ctx, claims)
}

// LoginFederated finds the account linked to the Google subject or creates one
// named after the account email.
func (s *Service) LoginFederated(ctx context.Context, claims GoogleClaims) (Identity, error) {
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, ErrInvalidCredentials
	}
	user, err := s.Repo.GetByGoogleID(ctx, claims.Subject)
	if err == nil {
		return user.identity(), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Identity{}, err
	}

	user = User{
		ID:        s.newID(),
		Username:  claims.Email,
		Role:      RoleUser,
		Provider:  ProviderGoogle,
		GoogleID:  claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		CreatedAt: s.now(),
	}
	switch err := s.Repo.Create(ctx, user); {
	case err == nil:
		telemetry.Info("user.registered", map[string]any{"user_id": user.ID, "provider": string(user.Provider)})
		return user.identity(), nil
	case errors.Is(err, errDuplicateGoogleID):
		existing, lookupErr := s.Repo.GetByGoogleID(ctx, claims.Subject)
		if lookupErr != nil {
			return Identity{}, lookupErr
		}
		return existing.identity(), nil
	case errors.Is(err, ErrDuplicateUsername):
		// The email is already taken by a local account.
		return Identity{}, ErrInvalidCredentials
	default:
		return Identity{}, err
	}
}

// Update applies patch and returns the number of modified accounts.
func (s *Service) Update(ctx context.Context, userID string, patch UserPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	current, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	changes := Changes{UpdatedAt: s.now()}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return 0, fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
		}
		changes.Username = &username
	}
	if patch.Password != nil {
		if current.Provider != ProviderLocal {
			return 0, fmt.Errorf("%w: password cannot be set on a google account", ErrInvalidInput)
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		changes.PasswordHash = &hash
	}
	if patch.Role != nil {
		role := strings.TrimSpace(*patch.Role)
		if role == "" {
			return 0, fmt.Errorf("%w: role cannot be empty", ErrInvalidInput)
		}
		changes.Role = &role
	}
	changes.Email = trimmed(patch.Email)
	changes.Name = trimmed(patch.Name)

	return s.Repo.Update(ctx, userID, changes)
}

// Delete removes the account and returns the number of deleted accounts.
// Resumes owned by the user are left in place.
func (s *Service) Delete(ctx context.Context, userID string) (int64, error) {
	return s.Repo.Delete(ctx, userID)
}

// GenerateToken issues a session token for userID.
func (s *Service) GenerateToken(userID string) (string, error) {
	return s.Tokens.Generate(userID)
}

// DecodeToken returns the user id carried by a valid token.
func (s *Service) DecodeToken(token string) (string, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Sub, nil
}

// UserFromToken resolves a token to the stored user.
func (s *Service) UserFromToken(ctx context.Context, token string) (User, error) {
	userID, err := s.DecodeToken(token)
	if err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, userID)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
