package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
)

type VideoRepo struct {
	DB DBTX
}

const videoColumns = `id, created_at, updated_at, owner_id, title, description, video_url, thumbnail,
	duration, views, is_published`

const createVideo = `-- name: CreateVideo
INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail, duration, is_published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + videoColumns

func (r *VideoRepo) CreateVideo(ctx context.Context, v models.Video) (models.Video, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createVideo,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoURL, v.Thumbnail, v.Duration, v.IsPublished,
	)
	video, err := pgx.CollectOneRow(rows, rowToVideo)
	if err != nil {
		return video, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

const getVideoByID = `-- name: GetVideoByID
SELECT ` + videoColumns + ` FROM videos
WHERE id = $1
`

func (r *VideoRepo) GetVideoByID(ctx context.Context, id uuid.UUID) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, getVideoByID, id)
	return collectVideo(rows)
}

const listVideosByIDs = `-- name: ListVideosByIDs
SELECT ` + videoColumns + ` FROM videos
WHERE id = ANY($1)
`

func (r *VideoRepo) ListVideosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Video, error) {
	if len(ids) == 0 {
		return []models.Video{}, nil
	}

	rows, _ := r.DB.Query(ctx, listVideosByIDs, ids)
	videos, err := pgx.CollectRows(rows, rowToVideo)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return videos, nil
}

const updateVideo = `-- name: UpdateVideo
UPDATE videos
SET title = COALESCE($2, title),
	description = COALESCE($3, description),
	updated_at = now()
WHERE id = $1
RETURNING ` + videoColumns

func (r *VideoRepo) UpdateVideo(ctx context.Context, id uuid.UUID, arg repository.UpdateVideoParams) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, updateVideo, id, arg.Title, arg.Description)
	return collectVideo(rows)
}

const togglePublished = `-- name: TogglePublished
UPDATE videos
SET is_published = NOT is_published,
	updated_at = now()
WHERE id = $1
RETURNING ` + videoColumns

func (r *VideoRepo) TogglePublished(ctx context.Context, id uuid.UUID) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, togglePublished, id)
	return collectVideo(rows)
}

const deleteVideo = `-- name: DeleteVideo
DELETE FROM videos
WHERE id = $1
`

func (r *VideoRepo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteVideo, id)

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrVideoNotFound
	default:
		return nil
	}
}

const listVideos = `-- name: ListVideos
SELECT ` + videoColumns + ` FROM videos
WHERE ($1::uuid IS NULL OR owner_id = $1::uuid)
	AND ($2::text = '' OR position(lower($2::text) IN lower(title)) > 0)
	AND (NOT $3::boolean OR is_published)
ORDER BY
	CASE WHEN $4::boolean THEN created_at END ASC,
	created_at DESC,
	id
LIMIT $5 OFFSET $6
`

func (r *VideoRepo) ListVideos(ctx context.Context, arg repository.ListVideosParams) ([]models.Video, error) {
	rows, _ := r.DB.Query(ctx, listVideos,
		arg.OwnerID, arg.Query, arg.PublishedOnly, arg.Ascending, arg.Limit, arg.Offset,
	)
	videos, err := pgx.CollectRows(rows, rowToVideo)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return videos, nil
}

func collectVideo(rows pgx.Rows) (models.Video, error) {
	video, err := pgx.CollectOneRow(rows, rowToVideo)

	switch {
	case err == nil:
		return video, nil
	case errors.Is(err, pgx.ErrNoRows):
		return video, apperrors.ErrVideoNotFound
	default:
		return video, fmt.Errorf("db error: %w", err)
	}
}

func rowToVideo(row pgx.CollectableRow) (models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.CreatedAt, &v.UpdatedAt, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.Thumbnail,
		&v.Duration, &v.Views, &v.IsPublished,
	)
	return v, err
}
