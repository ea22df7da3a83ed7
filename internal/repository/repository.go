package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/models"
)

type CreateAccountParams struct {
	Handle       string
	DisplayName  string
	Email        string
	PasswordHash string
	ProfileImage string
	CoverImage   string
}

type UpdateAccountParams struct {
	DisplayName  *string
	Email        *string
	ProfileImage *string
	CoverImage   *string
}

// Account repository interface
type AccountRepo interface {
	// Create account
	// If account with the handle or email exists has to return apperrors.ErrAccountAlreadyExists
	CreateAccount(ctx context.Context, arg CreateAccountParams) (models.Account, error)

	// Get account by id, handle or by login (handle or email)
	// If account not found must return apperrors.ErrAccountNotFound
	GetAccountByID(ctx context.Context, id uuid.UUID) (models.Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (models.Account, error)
	GetAccountByLogin(ctx context.Context, login string) (models.Account, error)

	// Get accounts by id list. Missing ids are skipped, order is not defined
	ListAccountsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Account, error)

	// Update not nil fields only
	UpdateAccount(ctx context.Context, id uuid.UUID, arg UpdateAccountParams) (models.Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	// Overwrite stored refresh token. Empty token ends the session
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// Replace stored refresh token only if it still equals 'expected'
	// Has to return apperrors.ErrRefreshTokenSuperseded if it does not
	SwapRefreshToken(ctx context.Context, id uuid.UUID, expected string, token string) error

	AppendWatchHistory(ctx context.Context, id uuid.UUID, videoID uuid.UUID) ([]uuid.UUID, error)
}

// Subscription edges repository interface
type SubscriptionRepo interface {
	// Create edge. Must be idempotent: existing edge is returned as is
	Subscribe(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (models.Subscription, error)

	// Remove edge. Return false if there was nothing to remove
	Unsubscribe(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error)

	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountSubscribed(ctx context.Context, subscriberID uuid.UUID) (int64, error)
	Exists(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error)
}

type UpdateVideoParams struct {
	Title       *string
	Description *string
}

type ListVideosParams struct {
	// Nil means any owner
	OwnerID *uuid.UUID

	// Case-insensitive title substring. Empty matches every title
	Query string

	PublishedOnly bool

	// Oldest first if set, newest first otherwise
	Ascending bool

	Limit  int
	Offset int
}

// Video repository interface
type VideoRepo interface {
	CreateVideo(ctx context.Context, video models.Video) (models.Video, error)

	// If video not found must return apperrors.ErrVideoNotFound
	GetVideoByID(ctx context.Context, id uuid.UUID) (models.Video, error)

	// Get videos by id list. Missing ids are skipped, duplicated ids returned once, order is not defined
	ListVideosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Video, error)

	UpdateVideo(ctx context.Context, id uuid.UUID, arg UpdateVideoParams) (models.Video, error)

	// Flip publish status. If video not found must return apperrors.ErrVideoNotFound
	TogglePublished(ctx context.Context, id uuid.UUID) (models.Video, error)

	// If video not found must return apperrors.ErrVideoNotFound
	DeleteVideo(ctx context.Context, id uuid.UUID) error

	// Page of videos ordered by creation time
	ListVideos(ctx context.Context, arg ListVideosParams) ([]models.Video, error)
}

type Storage interface {
	Account() AccountRepo
	Subscription() SubscriptionRepo
	Video() VideoRepo

	// Run fn within transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
