package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/service/auth/tokenmanager"
)

const (
	defaultAccessCookieName  = "accessToken"
	defaultRefreshCookieName = "refreshToken"
	defaultAccessHeaderName  = "Authorization"
	defaultAccessAuthScheme  = "Bearer"

	// Limit for JSON body with refresh token
	maxRefreshBodySize = 16 << 10
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Cookies to carry tokens
	AccessCookieName  string
	RefreshCookieName string

	// Header and scheme to carry access token, like 'Authorization: Bearer <token>'
	AccessHeaderName string
	AccessAuthScheme string

	// Set Secure flag on cookies, should be true behind https
	CookieSecure bool

	// Hasher to compare passwords on login. Bcrypt is used if not set
	Hasher PasswordHasher
}

// Auth service
type AuthService struct {
	accessCookieName  string
	refreshCookieName string
	accessHeaderName  string
	accessAuthScheme  string
	cookieSecure      bool

	// hasher to compare user passwords
	hasher PasswordHasher

	// Manager to issue and verify tokens
	tokens *tokenmanager.TokenManager

	accounts repository.AccountRepo
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, accounts repository.AccountRepo) (*AuthService, error) {
	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessCookieName, defaultAccessCookieName)
	setDefault(&cfg.RefreshCookieName, defaultRefreshCookieName)
	setDefault(&cfg.AccessHeaderName, defaultAccessHeaderName)
	setDefault(&cfg.AccessAuthScheme, defaultAccessAuthScheme)

	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}

	return &AuthService{
		accessCookieName:  cfg.AccessCookieName,
		refreshCookieName: cfg.RefreshCookieName,
		accessHeaderName:  cfg.AccessHeaderName,
		accessAuthScheme:  cfg.AccessAuthScheme,
		cookieSecure:      cfg.CookieSecure,
		hasher:            cfg.Hasher,
		tokens:            tokens,
		accounts:          accounts,
	}, nil
}

// Check credentials and start new session. Previous session of the account ends
// Login may be either handle or email
func (s *AuthService) Login(ctx context.Context, login string, password string) (models.Account, models.TokenPair, error) {
	account, err := s.accounts.GetAccountByLogin(ctx, models.FoldLogin(login))
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return models.Account{}, models.TokenPair{}, apperrors.ErrInvalidCredential
	case err != nil:
		return models.Account{}, models.TokenPair{}, err
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		return models.Account{}, models.TokenPair{}, apperrors.ErrInvalidCredential
	}

	pair, err := s.tokens.RotateSession(ctx, account.ID)
	if err != nil {
		return models.Account{}, models.TokenPair{}, fmt.Errorf("session could not be started. %w", err)
	}

	return account.Sanitized(), pair, nil
}

// Exchange live refresh token to the new pair
// Replayed or concurrently used token fails with apperrors.ErrRefreshTokenSuperseded
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.Account, models.TokenPair, error) {
	accountID, err := s.tokens.ParseRefresh(refresh)
	if err != nil {
		return models.Account{}, models.TokenPair{}, err
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return models.Account{}, models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	case err != nil:
		return models.Account{}, models.TokenPair{}, err
	}

	if err := s.tokens.VerifyRefresh(refresh, account); err != nil {
		return models.Account{}, models.TokenPair{}, err
	}

	pair, err := s.tokens.RotateRefresh(ctx, account, refresh)
	if err != nil {
		return models.Account{}, models.TokenPair{}, err
	}

	return account.Sanitized(), pair, nil
}

func (s *AuthService) Logout(ctx context.Context, accountID uuid.UUID) error {
	return s.tokens.EndSession(ctx, accountID)
}

// Authenticate request by access token from cookie or header
// Return account without credential data
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (models.Account, error) {
	access := s.getAccess(r)
	if access == "" {
		return models.Account{}, apperrors.ErrUnauthenticated
	}

	claims, err := s.tokens.ParseAccess(access)
	if err != nil {
		return models.Account{}, err
	}

	account, err := s.accounts.GetAccountByID(ctx, claims.AccountID)
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return models.Account{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	case err != nil:
		return models.Account{}, err
	}

	return account.Sanitized(), nil
}

// Write tokens to cookies and access token to header
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, s.cookie(s.accessCookieName, pair.Access.Value, pair.Access.ExpiresAt))
	http.SetCookie(w, s.cookie(s.refreshCookieName, pair.Refresh.Value, pair.Refresh.ExpiresAt))
	w.Header().Set(s.accessHeaderName, s.accessAuthScheme+" "+pair.Access.Value)
}

// Expire token cookies
func (s *AuthService) ClearTokens(w http.ResponseWriter) {
	for _, name := range []string{s.accessCookieName, s.refreshCookieName} {
		c := s.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

// Get refresh token from cookie or from JSON body field 'refreshToken'
func (s *AuthService) GetRefresh(r *http.Request) (string, error) {
	if c, err := r.Cookie(s.refreshCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	if r.Body == nil {
		return "", apperrors.ErrUnauthenticated
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxRefreshBodySize)).Decode(&body)
	if err != nil || body.RefreshToken == "" {
		return "", apperrors.ErrUnauthenticated
	}

	return body.RefreshToken, nil
}

func (s *AuthService) getAccess(r *http.Request) string {
	if c, err := r.Cookie(s.accessCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get(s.accessHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) {
		return ""
	}

	return strings.TrimSpace(token)
}

func (s *AuthService) cookie(name string, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
