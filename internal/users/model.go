package users

import (
	"errors"
	"strings"
	"time"
)

// AuthProvider names the credential kind a user signs in with.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid user input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// errDuplicateGoogleID is raised when a concurrent sign-in created the account first.
	errDuplicateGoogleID = errors.New("google account already linked")
)

// User is a registered account. Local accounts carry a password hash,
// Google accounts carry the Google subject id.
type User struct {
	ID           string       `json:"user_id" bson:"user_id"`
	Username     string       `json:"username" bson:"username"`
	PasswordHash string       `json:"-" bson:"password,omitempty"`
	Role         string       `json:"role" bson:"role"`
	Provider     AuthProvider `json:"auth_provider" bson:"auth_provider"`
	GoogleID     string       `json:"google_id,omitempty" bson:"google_id,omitempty"`
	Email        string       `json:"email,omitempty" bson:"email,omitempty"`
	Name         string       `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at" bson:"updated_at"`
}

// Validate checks the credential invariant for a user about to be stored.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Username) == "" {
		return ErrInvalidInput
	}
	switch u.Provider {
	case ProviderLocal:
		if u.PasswordHash == "" || u.GoogleID != "" {
			return ErrInvalidInput
		}
	case ProviderGoogle:
		if u.GoogleID == "" || u.PasswordHash != "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	return nil
}

// Identity is the public result of a successful sign-in.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u User) identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// UserPatch lists the fields a caller may change. Nil fields are left untouched.
type UserPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Password == nil && p.Role == nil && p.Email == nil && p.Name == nil
}

// Changes is a validated patch as handed to a Repo. PasswordHash is already hashed.
type Changes struct {
	Username     *string
	PasswordHash *string
	Role         *string
	Email        *string
	Name         *string
	UpdatedAt    time.Time
}

// GoogleClaims are the verified fields of a Google ID token.
type GoogleClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}
