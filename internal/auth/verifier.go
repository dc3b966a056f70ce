package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"

	"job-selector/internal/users"
)

var errMissingClaims = errors.New("id token lacks subject or email")

// GoogleVerifier validates Google ID tokens against the configured OAuth client id.
type GoogleVerifier struct {
	ClientID string

	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: clientID, validate: idtoken.Validate}
}

var _ users.IDTokenVerifier = (*GoogleVerifier)(nil)

// Verify checks signature, expiry and audience, then extracts the account claims.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (users.GoogleClaims, error) {
	if strings.TrimSpace(v.ClientID) == "" {
		return users.GoogleClaims{}, errors.New("google client id not configured")
	}
	payload, err := v.validate(ctx, token, v.ClientID)
	if err != nil {
		return users.GoogleClaims{}, err
	}
	claims := users.GoogleClaims{
		Subject: payload.Subject,
		Email:   stringClaim(payload.Claims, "email"),
		Name:    stringClaim(payload.Claims, "name"),
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}
	if claims.Subject == "" || claims.Email == "" {
		return users.GoogleClaims{}, errMissingClaims
	}
	return claims, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
