package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/testutil"
)

func mustCreateVideo(t *testing.T, db DBTX, ownerID uuid.UUID, title string) models.Video {
	t.Helper()
	return testutil.CreateVideo(t, &VideoRepo{DB: db}, ownerID, title)
}

func Test_VideoRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create and get video", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}
			owner := mustCreateAccount(t, tx, "owner")

			created := mustCreateVideo(t, tx, owner.ID, "intro")
			assert.NotEqual(t, uuid.Nil, created.ID)
			assert.Equal(t, owner.ID, created.OwnerID)
			assert.True(t, created.Duration.Equal(decimal.RequireFromString("61.5")), "got duration %s", created.Duration)
			assert.Equal(t, int64(0), created.Views)
			assert.True(t, created.IsPublished)

			got, err := repo.GetVideoByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, "intro", got.Title)
		})
	})

	t.Run("get video not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}

			_, err := repo.GetVideoByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("list videos skips missing and duplicates", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}
			owner := mustCreateAccount(t, tx, "owner")
			v1 := mustCreateVideo(t, tx, owner.ID, "one")
			v2 := mustCreateVideo(t, tx, owner.ID, "two")

			got, err := repo.ListVideosByIDs(t.Context(), []uuid.UUID{v1.ID, uuid.New(), v2.ID, v1.ID})

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.ElementsMatch(t, []uuid.UUID{v1.ID, v2.ID}, []uuid.UUID{got[0].ID, got[1].ID})
		})
	})

	t.Run("update video", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}
			owner := mustCreateAccount(t, tx, "owner")
			created := mustCreateVideo(t, tx, owner.ID, "draft")

			got, err := repo.UpdateVideo(t.Context(), created.ID, repository.UpdateVideoParams{Title: ptr("final")})

			require.NoError(t, err)
			assert.Equal(t, "final", got.Title)
			assert.Equal(t, created.Description, got.Description)

			_, err = repo.UpdateVideo(t.Context(), uuid.New(), repository.UpdateVideoParams{Title: ptr("x")})
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("toggle published", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}
			owner := mustCreateAccount(t, tx, "owner")
			created := mustCreateVideo(t, tx, owner.ID, "draft")

			got, err := repo.TogglePublished(t.Context(), created.ID)
			require.NoError(t, err)
			assert.False(t, got.IsPublished)
			assert.Equal(t, created.Title, got.Title)

			got, err = repo.TogglePublished(t.Context(), created.ID)
			require.NoError(t, err)
			assert.True(t, got.IsPublished)

			_, err = repo.TogglePublished(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("delete video", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}
			owner := mustCreateAccount(t, tx, "owner")
			created := mustCreateVideo(t, tx, owner.ID, "gone")

			err := repo.DeleteVideo(t.Context(), created.ID)
			require.NoError(t, err)

			_, err = repo.GetVideoByID(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)

			err = repo.DeleteVideo(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("list videos", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := VideoRepo{DB: tx}
			ann := mustCreateAccount(t, tx, "ann")
			ben := mustCreateAccount(t, tx, "ben")

			// Rows created in one transaction share now(), so spread them explicitly
			videos := make([]models.Video, 0, 4)
			for i, row := range []struct {
				owner uuid.UUID
				title string
			}{
				{ann.ID, "Go basics"},
				{ann.ID, "Cooking pasta"},
				{ben.ID, "Advanced GO"},
				{ann.ID, "go draft"},
			} {
				v := mustCreateVideo(t, tx, row.owner, row.title)
				_, err := tx.Exec(t.Context(), `UPDATE videos SET created_at = now() - make_interval(mins => $2) WHERE id = $1`, v.ID, 10-i)
				require.NoError(t, err)
				videos = append(videos, v)
			}
			_, err := repo.TogglePublished(t.Context(), videos[3].ID)
			require.NoError(t, err)

			ids := func(vs []models.Video) []uuid.UUID {
				out := make([]uuid.UUID, 0, len(vs))
				for _, v := range vs {
					out = append(out, v.ID)
				}
				return out
			}

			tests := []struct {
				name     string
				params   repository.ListVideosParams
				expected []uuid.UUID
			}{
				{
					name:     "newest first",
					params:   repository.ListVideosParams{Limit: 10},
					expected: []uuid.UUID{videos[3].ID, videos[2].ID, videos[1].ID, videos[0].ID},
				},
				{
					name:     "oldest first",
					params:   repository.ListVideosParams{Ascending: true, Limit: 10},
					expected: []uuid.UUID{videos[0].ID, videos[1].ID, videos[2].ID, videos[3].ID},
				},
				{
					name:     "by owner",
					params:   repository.ListVideosParams{OwnerID: &ben.ID, Limit: 10},
					expected: []uuid.UUID{videos[2].ID},
				},
				{
					name:     "title query ignores case",
					params:   repository.ListVideosParams{Query: "go", PublishedOnly: true, Limit: 10},
					expected: []uuid.UUID{videos[2].ID, videos[0].ID},
				},
				{
					name:     "published only",
					params:   repository.ListVideosParams{OwnerID: &ann.ID, PublishedOnly: true, Limit: 10},
					expected: []uuid.UUID{videos[1].ID, videos[0].ID},
				},
				{
					name:     "page",
					params:   repository.ListVideosParams{Limit: 2, Offset: 1},
					expected: []uuid.UUID{videos[2].ID, videos[1].ID},
				},
			}

			for _, tc := range tests {
				got, err := repo.ListVideos(t.Context(), tc.params)
				require.NoError(t, err, tc.name)
				assert.Equal(t, tc.expected, ids(got), tc.name)
			}

			got, err := repo.ListVideos(t.Context(), repository.ListVideosParams{Query: "nothing like this", Limit: 10})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	})
}
