package postgres

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

// Create account with handle and derived email
func mustCreateAccount(t *testing.T, db DBTX, handle string) models.Account {
	t.Helper()
	return testutil.CreateAccount(t, &AccountRepo{DB: db}, handle)
}

func Test_AccountRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create account ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}

			got, err := repo.CreateAccount(t.Context(), repository.CreateAccountParams{
				Handle:       "alice",
				DisplayName:  "Alice",
				Email:        "alice@example.com",
				PasswordHash: "hashed",
				ProfileImage: "https://cdn/alice.png",
			})

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, "alice", got.Handle)
			assert.Equal(t, "Alice", got.DisplayName)
			assert.Equal(t, "alice@example.com", got.Email)
			assert.Equal(t, "hashed", got.PasswordHash)
			assert.Equal(t, "https://cdn/alice.png", got.ProfileImage)
			assert.Empty(t, got.CoverImage)
			assert.Empty(t, got.WatchHistory, "new account has no history")
			assert.Empty(t, got.RefreshToken, "new account has no session")
			assert.WithinDuration(t, time.Now(), got.CreatedAt, 5*time.Second)
		})
	})

	t.Run("create account duplicated handle or email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			mustCreateAccount(t, tx, "bob")

			_, err := repo.CreateAccount(t.Context(), repository.CreateAccountParams{
				Handle: "bob", DisplayName: "Bob", Email: "other@example.com", PasswordHash: "x",
			})
			require.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
		})

		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			mustCreateAccount(t, tx, "bob")

			_, err := repo.CreateAccount(t.Context(), repository.CreateAccountParams{
				Handle: "bob2", DisplayName: "Bob", Email: "bob@example.com", PasswordHash: "x",
			})
			require.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
		})
	})

	t.Run("get account by id handle and login", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created := mustCreateAccount(t, tx, "carol")

			byID, err := repo.GetAccountByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created, byID)

			byHandle, err := repo.GetAccountByHandle(t.Context(), "carol")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byHandle.ID)

			byEmail, err := repo.GetAccountByLogin(t.Context(), "carol@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byEmail.ID)

			byLogin, err := repo.GetAccountByLogin(t.Context(), "carol")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byLogin.ID)
		})
	})

	t.Run("get account not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}

			_, err := repo.GetAccountByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			_, err = repo.GetAccountByHandle(t.Context(), "nobody")
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			_, err = repo.GetAccountByLogin(t.Context(), "nobody@example.com")
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})

	t.Run("list accounts by ids skips missing", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			a := mustCreateAccount(t, tx, "dave")
			b := mustCreateAccount(t, tx, "erin")

			got, err := repo.ListAccountsByIDs(t.Context(), []uuid.UUID{a.ID, uuid.New(), b.ID})

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{got[0].ID, got[1].ID})

			empty, err := repo.ListAccountsByIDs(t.Context(), nil)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	})

	t.Run("update account changes only passed fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created := mustCreateAccount(t, tx, "frank")

			got, err := repo.UpdateAccount(t.Context(), created.ID, repository.UpdateAccountParams{
				DisplayName: ptr("Franky"),
				CoverImage:  ptr("https://cdn/cover.png"),
			})

			require.NoError(t, err)
			assert.Equal(t, "Franky", got.DisplayName)
			assert.Equal(t, "https://cdn/cover.png", got.CoverImage)
			assert.Equal(t, created.Email, got.Email, "email was not passed so must stay the same")
			assert.Equal(t, created.ProfileImage, got.ProfileImage)
		})
	})

	t.Run("update account email conflict", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			mustCreateAccount(t, tx, "gina")
			other := mustCreateAccount(t, tx, "hank")

			_, err := repo.UpdateAccount(t.Context(), other.ID, repository.UpdateAccountParams{Email: ptr("gina@example.com")})
			require.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
		})
	})

	t.Run("update account not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}

			_, err := repo.UpdateAccount(t.Context(), uuid.New(), repository.UpdateAccountParams{DisplayName: ptr("x")})
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			err = repo.UpdatePasswordHash(t.Context(), uuid.New(), "x")
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			err = repo.SetRefreshToken(t.Context(), uuid.New(), "x")
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})

	t.Run("update password hash", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created := mustCreateAccount(t, tx, "ivan")

			err := repo.UpdatePasswordHash(t.Context(), created.ID, "new-hash")
			require.NoError(t, err)

			got, err := repo.GetAccountByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, "new-hash", got.PasswordHash)
		})
	})

	t.Run("set and swap refresh token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created := mustCreateAccount(t, tx, "judy")

			err := repo.SetRefreshToken(t.Context(), created.ID, "r1")
			require.NoError(t, err)

			err = repo.SwapRefreshToken(t.Context(), created.ID, "r1", "r2")
			require.NoError(t, err)

			got, err := repo.GetAccountByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, "r2", got.RefreshToken)

			err = repo.SwapRefreshToken(t.Context(), created.ID, "r1", "r3")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenSuperseded, "r1 was rotated already")
		})
	})

	t.Run("swap fails when no session", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created := mustCreateAccount(t, tx, "kate")

			err := repo.SwapRefreshToken(t.Context(), created.ID, "", "r1")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenSuperseded, "empty stored token is never a live session")
		})
	})

	t.Run("append watch history keeps order and duplicates", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created := mustCreateAccount(t, tx, "leo")
			v1, v2 := uuid.New(), uuid.New()

			_, err := repo.AppendWatchHistory(t.Context(), created.ID, v1)
			require.NoError(t, err)
			_, err = repo.AppendWatchHistory(t.Context(), created.ID, v2)
			require.NoError(t, err)
			history, err := repo.AppendWatchHistory(t.Context(), created.ID, v1)
			require.NoError(t, err)

			assert.Equal(t, []uuid.UUID{v1, v2, v1}, history)

			got, err := repo.GetAccountByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, history, got.WatchHistory)
		})
	})

	t.Run("append watch history account not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}

			_, err := repo.AppendWatchHistory(t.Context(), uuid.New(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})

	// Runs on pool (not in tx) cause a tx is not safe for concurrent use
	t.Run("concurrent swaps only one wins", func(t *testing.T) {
		repo := AccountRepo{DB: pg.Pool}
		created := mustCreateAccount(t, pg.Pool, "race-"+uuid.NewString()[:8])
		require.NoError(t, repo.SetRefreshToken(t.Context(), created.ID, "start"))

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = repo.SwapRefreshToken(t.Context(), created.ID, "start", uuid.NewString())
			}()
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
				continue
			}
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenSuperseded)
		}
		assert.Equal(t, 1, won)
	})
}
