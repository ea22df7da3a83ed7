package postgres

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/vidtube/internal/testutil"
)

func Test_SubscriptionRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("subscribe is idempotent", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SubscriptionRepo{DB: tx}
			alice := mustCreateAccount(t, tx, "alice")
			bob := mustCreateAccount(t, tx, "bob")

			first, err := repo.Subscribe(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			assert.Equal(t, alice.ID, first.SubscriberID)
			assert.Equal(t, bob.ID, first.ChannelID)

			second, err := repo.Subscribe(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID, "existing edge must be returned")

			count, err := repo.CountSubscribers(t.Context(), bob.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	})

	t.Run("counts and exists", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SubscriptionRepo{DB: tx}
			alice := mustCreateAccount(t, tx, "alice")
			bob := mustCreateAccount(t, tx, "bob")
			carol := mustCreateAccount(t, tx, "carol")

			_, err := repo.Subscribe(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			_, err = repo.Subscribe(t.Context(), carol.ID, bob.ID)
			require.NoError(t, err)
			_, err = repo.Subscribe(t.Context(), alice.ID, carol.ID)
			require.NoError(t, err)

			subscribers, err := repo.CountSubscribers(t.Context(), bob.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), subscribers)

			subscribed, err := repo.CountSubscribed(t.Context(), alice.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), subscribed)

			none, err := repo.CountSubscribed(t.Context(), bob.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), none)

			exists, err := repo.Exists(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = repo.Exists(t.Context(), bob.ID, alice.ID)
			require.NoError(t, err)
			assert.False(t, exists, "edges are directed")
		})
	})

	t.Run("unsubscribe", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SubscriptionRepo{DB: tx}
			alice := mustCreateAccount(t, tx, "alice")
			bob := mustCreateAccount(t, tx, "bob")
			_, err := repo.Subscribe(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)

			removed, err := repo.Unsubscribe(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = repo.Unsubscribe(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			assert.False(t, removed, "nothing to remove second time")

			exists, err := repo.Exists(t.Context(), alice.ID, bob.ID)
			require.NoError(t, err)
			assert.False(t, exists)
		})
	})

	t.Run("self subscription rejected by db", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SubscriptionRepo{DB: tx}
			alice := mustCreateAccount(t, tx, "alice")

			_, err := repo.Subscribe(t.Context(), alice.ID, alice.ID)
			require.Error(t, err)
		})
	})

	// Runs on pool (not in tx) cause a tx is not safe for concurrent use
	t.Run("concurrent subscribes return the same edge", func(t *testing.T) {
		repo := SubscriptionRepo{DB: pg.Pool}
		suffix := uuid.NewString()[:8]
		alice := mustCreateAccount(t, pg.Pool, "alice-"+suffix)
		bob := mustCreateAccount(t, pg.Pool, "bob-"+suffix)

		const n = 8
		var wg sync.WaitGroup
		ids := make([]uuid.UUID, n)
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub, err := repo.Subscribe(t.Context(), alice.ID, bob.ID)
				ids[i], errs[i] = sub.ID, err
			}()
		}
		wg.Wait()

		for i := range n {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i], "every call must return the single edge")
		}

		count, err := repo.CountSubscribers(t.Context(), bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
