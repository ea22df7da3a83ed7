package video

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/repository/postgres"
	"github.com/nkiryanov/vidtube/internal/service/media"
	"github.com/nkiryanov/vidtube/internal/testutil"
)

// Allow to use a function as media url resolver
type mediaFunc func(kind media.Kind, key string) (string, error)

func (f mediaFunc) PublicURL(kind media.Kind, key string) (string, error) {
	return f(kind, key)
}

var testMedia = mediaFunc(func(kind media.Kind, key string) (string, error) {
	if key == "" {
		return "", apperrors.ErrMediaKeyInvalid
	}
	return "https://cdn/" + string(kind) + "/" + key, nil
})

func TestVideo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(s *VideoService, owner models.Account, storage repository.Storage)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			owner := testutil.CreateAccount(t, storage.Account(), "owner")
			fn(NewService(storage, testMedia), owner, storage)
		})
	}

	publish := func(t *testing.T, s *VideoService, ownerID uuid.UUID) models.Video {
		t.Helper()
		v, err := s.Publish(t.Context(), ownerID, PublishParams{
			Title:        "Intro",
			Description:  "first one",
			VideoKey:     "v1",
			ThumbnailKey: "t1",
			Duration:     decimal.RequireFromString("12.25"),
		})
		require.NoError(t, err)
		return v
	}

	t.Run("publish and get", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			created := publish(t, s, owner.ID)

			require.Equal(t, owner.ID, created.OwnerID)
			require.Equal(t, "https://cdn/video/v1", created.VideoURL)
			require.Equal(t, "https://cdn/thumbnail/t1", created.Thumbnail)
			require.True(t, created.IsPublished)

			got, err := s.Get(t.Context(), uuid.Nil, created.ID)
			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
			require.True(t, decimal.RequireFromString("12.25").Equal(got.Duration))
		})
	})

	t.Run("publish with invalid key", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			_, err := s.Publish(t.Context(), owner.ID, PublishParams{Title: "x", ThumbnailKey: "t"})
			require.ErrorIs(t, err, apperrors.ErrMediaKeyInvalid)
		})
	})

	t.Run("update by owner", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			created := publish(t, s, owner.ID)
			title := "Renamed"

			got, err := s.Update(t.Context(), owner.ID, created.ID, repository.UpdateVideoParams{Title: &title})

			require.NoError(t, err)
			require.Equal(t, "Renamed", got.Title)
			require.Equal(t, "first one", got.Description)
		})
	})

	t.Run("update by other account forbidden", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, storage repository.Storage) {
			created := publish(t, s, owner.ID)
			title := "Hijacked"

			_, err := s.Update(t.Context(), uuid.New(), created.ID, repository.UpdateVideoParams{Title: &title})
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			got, err := storage.Video().GetVideoByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, "Intro", got.Title)
		})
	})

	t.Run("update not found", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			_, err := s.Update(t.Context(), owner.ID, uuid.New(), repository.UpdateVideoParams{})
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("unpublished visible to owner only", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			created := publish(t, s, owner.ID)

			got, err := s.TogglePublish(t.Context(), owner.ID, created.ID)
			require.NoError(t, err)
			require.False(t, got.IsPublished)

			_, err = s.Get(t.Context(), uuid.New(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)

			got, err = s.Get(t.Context(), owner.ID, created.ID)
			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("toggle publish by other account forbidden", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, storage repository.Storage) {
			created := publish(t, s, owner.ID)

			_, err := s.TogglePublish(t.Context(), uuid.New(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			got, err := storage.Video().GetVideoByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.True(t, got.IsPublished)
		})
	})

	t.Run("delete", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, storage repository.Storage) {
			created := publish(t, s, owner.ID)

			err := s.Delete(t.Context(), uuid.New(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			err = s.Delete(t.Context(), owner.ID, created.ID)
			require.NoError(t, err)

			_, err = storage.Video().GetVideoByID(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)

			err = s.Delete(t.Context(), owner.ID, created.ID)
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("list by owner hides drafts from others", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			public := publish(t, s, owner.ID)
			draft := publish(t, s, owner.ID)
			_, err := s.TogglePublish(t.Context(), owner.ID, draft.ID)
			require.NoError(t, err)

			own, err := s.ListByOwner(t.Context(), owner.ID, owner.ID, ListParams{Page: 1, Limit: 10})
			require.NoError(t, err)
			require.Len(t, own, 2)

			other, err := s.ListByOwner(t.Context(), uuid.New(), owner.ID, ListParams{Page: 1, Limit: 10})
			require.NoError(t, err)
			require.Len(t, other, 1)
			require.Equal(t, public.ID, other[0].ID)

			page, err := s.ListByOwner(t.Context(), owner.ID, owner.ID, ListParams{Page: 2, Limit: 1})
			require.NoError(t, err)
			require.Len(t, page, 1)
		})
	})

	t.Run("search published titles", func(t *testing.T) {
		inTx(t, func(s *VideoService, owner models.Account, _ repository.Storage) {
			created := publish(t, s, owner.ID)

			found, err := s.Search(t.Context(), "INTR", ListParams{Page: 1, Limit: 10})
			require.NoError(t, err)
			require.Len(t, found, 1)
			require.Equal(t, created.ID, found[0].ID)

			_, err = s.TogglePublish(t.Context(), owner.ID, created.ID)
			require.NoError(t, err)

			found, err = s.Search(t.Context(), "intr", ListParams{Page: 1, Limit: 10})
			require.NoError(t, err)
			require.Empty(t, found)
		})
	})
}
