package tokenmanager

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 10 * 24 * time.Hour
)

type AccessClaims struct {
	jwt.RegisteredClaims
	AccountID   uuid.UUID `json:"uid"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	AccountID uuid.UUID `json:"uid"`
}

// Token manager with sensible default
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Both required to be set and must not be equal
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	accessKey  []byte
	refreshKey []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	// Accounts hold the only live refresh token
	accounts repository.AccountRepo
}

func New(cfg Config, accounts repository.AccountRepo) (*TokenManager, error) {
	switch {
	case cfg.AccessSecret == "":
		return nil, errors.New("access secret key must not be empty")
	case cfg.RefreshSecret == "":
		return nil, errors.New("refresh secret key must not be empty")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh secret keys must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		accounts:   accounts,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Sign access token with account identity. No side effects
func (m *TokenManager) IssueAccess(account models.Account) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	claims := AccessClaims{
		RegisteredClaims: m.registered(account.ID, now, expiresAt),
		AccountID:        account.ID,
		Handle:           account.Handle,
		DisplayName:      account.DisplayName,
		Email:            account.Email,
	}

	value, err := jwt.NewWithClaims(m.alg, claims).SignedString(m.accessKey)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Sign refresh token with account id only. No side effects
func (m *TokenManager) IssueRefresh(account models.Account) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	claims := RefreshClaims{
		RegisteredClaims: m.registered(account.ID, now, expiresAt),
		AccountID:        account.ID,
	}

	value, err := jwt.NewWithClaims(m.alg, claims).SignedString(m.refreshKey)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Issue new token pair and store the refresh token on the account, overwriting previous one
// Every previously issued refresh token becomes superseded
func (m *TokenManager) RotateSession(ctx context.Context, accountID uuid.UUID) (models.TokenPair, error) {
	account, err := m.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while getting account. Err: %w", err)
	}

	pair, err := m.issuePair(account)
	if err != nil {
		return pair, err
	}

	err = m.accounts.SetRefreshToken(ctx, account.ID, pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}

// Issue new token pair replacing 'presented' refresh token
// Only one of concurrent rotations of the same token wins, others get ErrRefreshTokenSuperseded
func (m *TokenManager) RotateRefresh(ctx context.Context, account models.Account, presented string) (models.TokenPair, error) {
	pair, err := m.issuePair(account)
	if err != nil {
		return pair, err
	}

	err = m.accounts.SwapRefreshToken(ctx, account.ID, presented, pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while rotating refresh token. Err: %w", err)
	}

	return pair, nil
}

// Clear stored refresh token so no refresh token of the account is accepted anymore
func (m *TokenManager) EndSession(ctx context.Context, accountID uuid.UUID) error {
	err := m.accounts.SetRefreshToken(ctx, accountID, "")
	if err != nil {
		return fmt.Errorf("error while ending session. Err: %w", err)
	}
	return nil
}

// Parse and validate access token: signature and expiration only
// Returned error wraps apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid
func (m *TokenManager) ParseAccess(access string) (AccessClaims, error) {
	var claims AccessClaims
	err := m.parse(access, &claims, m.accessKey)
	return claims, err
}

// Parse and validate refresh token: signature and expiration only
func (m *TokenManager) ParseRefresh(refresh string) (uuid.UUID, error) {
	var claims RefreshClaims
	err := m.parse(refresh, &claims, m.refreshKey)
	return claims.AccountID, err
}

// Check refresh token is valid and is the one currently stored on the account
func (m *TokenManager) VerifyRefresh(refresh string, account models.Account) error {
	accountID, err := m.ParseRefresh(refresh)
	if err != nil {
		return err
	}

	if accountID != account.ID {
		return fmt.Errorf("refresh token issued for another account. Err: %w", apperrors.ErrTokenInvalid)
	}

	if account.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(refresh), []byte(account.RefreshToken)) != 1 {
		return apperrors.ErrRefreshTokenSuperseded
	}

	return nil
}

func (m *TokenManager) issuePair(account models.Account) (models.TokenPair, error) {
	access, err := m.IssueAccess(account)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.IssueRefresh(account)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Random jti makes tokens issued within the same second differ
func (m *TokenManager) registered(accountID uuid.UUID, now time.Time, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (m *TokenManager) parse(token string, claims jwt.Claims, key []byte) error {
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}
}
