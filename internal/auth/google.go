package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"job-selector/internal/shared/server/respond"
	"job-selector/internal/shared/telemetry"
	"job-selector/internal/users"
)

// ErrLoginFailed is returned for every Google sign-in failure.
var ErrLoginFailed = errors.New("google login failed")

// LoginResult is returned after a successful Google sign-in.
type LoginResult struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// GoogleService signs users in with Google ID tokens and runs the browser OAuth flow.
type GoogleService struct {
	Users *users.Service

	oauthConfig *oauth2.Config
	uiRedirect  string
	stateTTL    time.Duration
	stateStore  *stateStore
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(svc *users.Service, clientID, clientSecret, redirectURL, uiRedirect string) *GoogleService {
	return &GoogleService{
		Users: svc,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		uiRedirect: uiRedirect,
		stateTTL:   5 * time.Minute,
		stateStore: newStateStore(),
	}
}

// LoginWithGoogle verifies idToken, finds or creates the linked account and
// issues a session token.
func (s *GoogleService) LoginWithGoogle(ctx context.Context, idToken string) (LoginResult, error) {
	identity, err := s.Users.AuthenticateWithGoogle(ctx, idToken)
	if err != nil {
		telemetry.Warn("auth.google_login_failed", map[string]any{"error": err})
		return LoginResult{}, ErrLoginFailed
	}
	token, err := s.Users.GenerateToken(identity.UserID)
	if err != nil {
		telemetry.Error("auth.token_issue_failed", map[string]any{"user_id": identity.UserID, "error": err})
		return LoginResult{}, ErrLoginFailed
	}
	telemetry.Info("auth.google_login", map[string]any{"user_id": identity.UserID})
	return LoginResult{UserID: identity.UserID, Username: identity.Username, Token: token}, nil
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/google", s.login)
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

func (s *GoogleService) login(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		respond.Validation(c, "idToken is required")
		return
	}
	result, err := s.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "google login failed", nil)
		return
	}
	respond.OK(c, result)
}

func (s *GoogleService) start(c *gin.Context) {
	if s.oauthConfig.ClientID == "" || s.oauthConfig.ClientSecret == "" || s.oauthConfig.RedirectURL == "" {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	s.stateStore.put(state, time.Now().Add(s.stateTTL))

	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.stateStore.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		respond.Error(c, http.StatusBadGateway, "auth_failed", "provider returned no id token", nil)
		return
	}

	result, err := s.LoginWithGoogle(ctx, idToken)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "google login failed", nil)
		return
	}

	redirectURL, err := appendToken(s.uiRedirect, result.Token)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}

// stateStore holds one-time OAuth state values until they expire.
type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, v := range s.items {
		if now.After(v) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	return ok && !time.Now().After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
