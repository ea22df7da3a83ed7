package video

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/service/media"
)

type MediaURLs interface {
	PublicURL(kind media.Kind, key string) (string, error)
}

type PublishParams struct {
	Title        string
	Description  string
	VideoKey     string
	ThumbnailKey string
	Duration     decimal.Decimal
}

type VideoService struct {
	storage repository.Storage
	media   MediaURLs
}

func NewService(storage repository.Storage, media MediaURLs) *VideoService {
	return &VideoService{
		storage: storage,
		media:   media,
	}
}

// Publish metadata of already uploaded video
func (s *VideoService) Publish(ctx context.Context, ownerID uuid.UUID, p PublishParams) (models.Video, error) {
	videoURL, err := s.media.PublicURL(media.KindVideo, p.VideoKey)
	if err != nil {
		return models.Video{}, err
	}

	thumbnail, err := s.media.PublicURL(media.KindThumbnail, p.ThumbnailKey)
	if err != nil {
		return models.Video{}, err
	}

	return s.storage.Video().CreateVideo(ctx, models.Video{
		OwnerID:     ownerID,
		Title:       p.Title,
		Description: p.Description,
		VideoURL:    videoURL,
		Thumbnail:   thumbnail,
		Duration:    p.Duration,
		IsPublished: true,
	})
}

// Get video visible to viewer. Unpublished videos are visible to owner only
func (s *VideoService) Get(ctx context.Context, viewerID uuid.UUID, id uuid.UUID) (models.Video, error) {
	video, err := s.storage.Video().GetVideoByID(ctx, id)
	if err != nil {
		return models.Video{}, err
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		return models.Video{}, apperrors.ErrVideoNotFound
	}

	return video, nil
}

// Update video details. Only owner is allowed to
func (s *VideoService) Update(ctx context.Context, accountID uuid.UUID, id uuid.UUID, p repository.UpdateVideoParams) (models.Video, error) {
	var video models.Video

	err := s.asOwner(ctx, accountID, id, func(videos repository.VideoRepo) (err error) {
		video, err = videos.UpdateVideo(ctx, id, p)
		return err
	})

	return video, err
}

// Flip publish status. Only owner is allowed to
func (s *VideoService) TogglePublish(ctx context.Context, accountID uuid.UUID, id uuid.UUID) (models.Video, error) {
	var video models.Video

	err := s.asOwner(ctx, accountID, id, func(videos repository.VideoRepo) (err error) {
		video, err = videos.TogglePublished(ctx, id)
		return err
	})

	return video, err
}

// Delete video. Only owner is allowed to
// Watch history entries pointing to it stay and are skipped on read
func (s *VideoService) Delete(ctx context.Context, accountID uuid.UUID, id uuid.UUID) error {
	return s.asOwner(ctx, accountID, id, func(videos repository.VideoRepo) error {
		return videos.DeleteVideo(ctx, id)
	})
}

// Run fn in transaction when account owns the video
func (s *VideoService) asOwner(ctx context.Context, accountID uuid.UUID, id uuid.UUID, fn func(repository.VideoRepo) error) error {
	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		current, err := storage.Video().GetVideoByID(ctx, id)
		if err != nil {
			return err
		}

		if current.OwnerID != accountID {
			return apperrors.ErrForbidden
		}

		return fn(storage.Video())
	})
}

type ListParams struct {
	Page      int // 1-based
	Limit     int
	Ascending bool
}

func (p ListParams) repo() repository.ListVideosParams {
	return repository.ListVideosParams{
		Ascending: p.Ascending,
		Limit:     p.Limit,
		Offset:    (max(p.Page, 1) - 1) * p.Limit,
	}
}

// Videos of the owner. Viewer other than owner gets published ones only
func (s *VideoService) ListByOwner(ctx context.Context, viewerID uuid.UUID, ownerID uuid.UUID, p ListParams) ([]models.Video, error) {
	arg := p.repo()
	arg.OwnerID = &ownerID
	arg.PublishedOnly = viewerID != ownerID

	return s.storage.Video().ListVideos(ctx, arg)
}

// Published videos with title containing the query
func (s *VideoService) Search(ctx context.Context, query string, p ListParams) ([]models.Video, error) {
	arg := p.repo()
	arg.Query = query
	arg.PublishedOnly = true

	return s.storage.Video().ListVideos(ctx, arg)
}
