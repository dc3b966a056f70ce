package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", ttl, "dev")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.Sub)
	}
	if claims.Exp-claims.Iat != int64(time.Hour/time.Second) {
		t.Fatalf("unexpected lifetime %d", claims.Exp-claims.Iat)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":"admin","exp":9999999999}`))

	_, err = issuer.Verify(strings.Join(parts, "."))
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token family, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, err := issuer.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	issuer.now = time.Now

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expiry must be distinguishable from tampering")
	}
}

func TestVerifyMalformed(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	for _, token := range []string{"", "abc", "a.b", "a..c", "!!.??.sig"} {
		if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected malformed, got %v", token, err)
		}
	}
}

func TestVerifyWithOtherSecret(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	other, err := NewTokenIssuer("another-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	token, err := other.Generate("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestNewTokenIssuerRequiresSecretInProduction(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour, "production"); err == nil {
		t.Fatalf("expected error without secret in production")
	}
	if _, err := NewTokenIssuer("", time.Hour, "dev"); err != nil {
		t.Fatalf("dev should fall back to a development secret: %v", err)
	}
}
