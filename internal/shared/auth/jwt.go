package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Claims represents the identity contained in a token.
type Claims struct {
	Sub string `json:"user_id"`
	Exp int64  `json:"exp"`
	Iat int64  `json:"iat,omitempty"`
}

var (
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)

	errMissingSecret = errors.New("jwt secret not configured")
)

const devSecret = "dev-secret"

// TokenIssuer signs and verifies HS256 tokens carrying a user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer. An empty secret is only accepted outside production.
func NewTokenIssuer(secret string, ttl time.Duration, env string) (*TokenIssuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
		}
		secret = devSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Generate issues a token for userID valid for the issuer TTL.
func (t *TokenIssuer) Generate(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	now := t.now().UTC()
	claims := Claims{Sub: userID, Iat: now.Unix(), Exp: now.Add(t.ttl).Unix()}

	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(payloadJSON)
	return signingInput + "." + t.sign(signingInput), nil
}

// Verify checks the signature and expiry and returns the claims.
func (t *TokenIssuer) Verify(token string) (Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Claims{}, ErrTokenMalformed
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil || header.Alg != "HS256" {
		return Claims{}, ErrTokenMalformed
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}
	var claims Claims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return Claims{}, ErrTokenMalformed
	}

	expected := t.sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return Claims{}, ErrTokenSignature
	}

	if claims.Sub == "" {
		return Claims{}, ErrTokenMalformed
	}
	if claims.Exp > 0 && t.now().UTC().Unix() >= claims.Exp {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func (t *TokenIssuer) sign(input string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
