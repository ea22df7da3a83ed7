package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
)

type AccountRepo struct {
	DB DBTX
}

const accountColumns = `id, created_at, updated_at, handle, display_name, email, password_hash,
	profile_image, cover_image, watch_history, refresh_token`

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, handle, display_name, email, password_hash, profile_image, cover_image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + accountColumns

func (r *AccountRepo) CreateAccount(ctx context.Context, arg repository.CreateAccountParams) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, createAccount,
		uuid.New(), arg.Handle, arg.DisplayName, arg.Email, arg.PasswordHash, arg.ProfileImage, arg.CoverImage,
	)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrAccountAlreadyExists
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccountByID = `-- name: GetAccountByID
SELECT ` + accountColumns + ` FROM accounts
WHERE id = $1
`

func (r *AccountRepo) GetAccountByID(ctx context.Context, id uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByID, id)
	return collectAccount(rows)
}

const getAccountByHandle = `-- name: GetAccountByHandle
SELECT ` + accountColumns + ` FROM accounts
WHERE handle = $1
`

func (r *AccountRepo) GetAccountByHandle(ctx context.Context, handle string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByHandle, handle)
	return collectAccount(rows)
}

const getAccountByLogin = `-- name: GetAccountByLogin
SELECT ` + accountColumns + ` FROM accounts
WHERE handle = $1 OR email = $1
LIMIT 1
`

func (r *AccountRepo) GetAccountByLogin(ctx context.Context, login string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByLogin, login)
	return collectAccount(rows)
}

const listAccountsByIDs = `-- name: ListAccountsByIDs
SELECT ` + accountColumns + ` FROM accounts
WHERE id = ANY($1)
`

func (r *AccountRepo) ListAccountsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error) {
	if len(ids) == 0 {
		return []models.Account{}, nil
	}

	rows, _ := r.DB.Query(ctx, listAccountsByIDs, ids)
	accounts, err := pgx.CollectRows(rows, rowToAccount)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

// Nil params keep current values
const updateAccount = `-- name: UpdateAccount
UPDATE accounts
SET display_name = COALESCE($2, display_name),
	email = COALESCE($3, email),
	profile_image = COALESCE($4, profile_image),
	cover_image = COALESCE($5, cover_image),
	updated_at = now()
WHERE id = $1
RETURNING ` + accountColumns

func (r *AccountRepo) UpdateAccount(ctx context.Context, id uuid.UUID, arg repository.UpdateAccountParams) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, updateAccount, id, arg.DisplayName, arg.Email, arg.ProfileImage, arg.CoverImage)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
		return account, apperrors.ErrAccountAlreadyExists
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

const updatePasswordHash = `-- name: UpdatePasswordHash
UPDATE accounts
SET password_hash = $2, updated_at = now()
WHERE id = $1
`

func (r *AccountRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.DB.Exec(ctx, updatePasswordHash, id, hash)
	return execResult(tag, err)
}

const setRefreshToken = `-- name: SetRefreshToken
UPDATE accounts
SET refresh_token = $2, updated_at = now()
WHERE id = $1
`

func (r *AccountRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	tag, err := r.DB.Exec(ctx, setRefreshToken, id, token)
	return execResult(tag, err)
}

// Compare and swap: single statement, so concurrent swaps of the same value can't both win
const swapRefreshToken = `-- name: SwapRefreshToken
UPDATE accounts
SET refresh_token = $3, updated_at = now()
WHERE id = $1 AND refresh_token = $2 AND refresh_token <> ''
`

func (r *AccountRepo) SwapRefreshToken(ctx context.Context, id uuid.UUID, expected string, token string) error {
	tag, err := r.DB.Exec(ctx, swapRefreshToken, id, expected, token)

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrRefreshTokenSuperseded
	default:
		return nil
	}
}

const appendWatchHistory = `-- name: AppendWatchHistory
UPDATE accounts
SET watch_history = array_append(watch_history, $2), updated_at = now()
WHERE id = $1
RETURNING watch_history
`

func (r *AccountRepo) AppendWatchHistory(ctx context.Context, id uuid.UUID, videoID uuid.UUID) ([]uuid.UUID, error) {
	rows, _ := r.DB.Query(ctx, appendWatchHistory, id, videoID)
	history, err := pgx.CollectOneRow(rows, pgx.RowTo[[]uuid.UUID])

	switch {
	case err == nil:
		return history, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, apperrors.ErrAccountNotFound
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}
}

func collectAccount(rows pgx.Rows) (models.Account, error) {
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

func execResult(tag pgconn.CommandTag, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrAccountNotFound
	default:
		return nil
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Handle, &a.DisplayName, &a.Email, &a.PasswordHash,
		&a.ProfileImage, &a.CoverImage, &a.WatchHistory, &a.RefreshToken,
	)
	return a, err
}
