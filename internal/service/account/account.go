package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/service/auth"
	"github.com/nkiryanov/vidtube/internal/service/media"
)

// Resolve uploaded media key to public url
type MediaURLs interface {
	PublicURL(kind media.Kind, key string) (string, error)
}

type RegisterParams struct {
	Handle      string
	DisplayName string
	Email       string
	Password    string

	// Keys of already uploaded images, optional
	ProfileImageKey string
	CoverImageKey   string
}

type AccountService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
	media   MediaURLs
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage, media MediaURLs) *AccountService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}

	return &AccountService{
		hasher:  hasher,
		storage: storage,
		media:   media,
	}
}

// Create account. Handle and email are stored folded
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (models.Account, error) {
	profileImage, err := s.imageURL(p.ProfileImageKey)
	if err != nil {
		return models.Account{}, err
	}
	coverImage, err := s.imageURL(p.CoverImageKey)
	if err != nil {
		return models.Account{}, err
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	account, err := s.storage.Account().CreateAccount(ctx, repository.CreateAccountParams{
		Handle:       models.FoldLogin(p.Handle),
		DisplayName:  p.DisplayName,
		Email:        models.FoldLogin(p.Email),
		PasswordHash: hash,
		ProfileImage: profileImage,
		CoverImage:   coverImage,
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("can't create account. Err: %w", err)
	}

	return account.Sanitized(), nil
}

// Replace password if the old one matches. Session stays alive
func (s *AccountService) ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword string, newPassword string) error {
	account, err := s.storage.Account().GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(account.PasswordHash, oldPassword); err != nil {
		return apperrors.ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return s.storage.Account().UpdatePasswordHash(ctx, accountID, hash)
}

// Update display name and email. Nil values are kept
func (s *AccountService) UpdateDetails(ctx context.Context, accountID uuid.UUID, displayName *string, email *string) (models.Account, error) {
	if email != nil {
		folded := models.FoldLogin(*email)
		email = &folded
	}

	account, err := s.storage.Account().UpdateAccount(ctx, accountID, repository.UpdateAccountParams{
		DisplayName: displayName,
		Email:       email,
	})
	if err != nil {
		return models.Account{}, err
	}

	return account.Sanitized(), nil
}

func (s *AccountService) SetProfileImage(ctx context.Context, accountID uuid.UUID, key string) (models.Account, error) {
	return s.setImage(ctx, accountID, key, func(p *repository.UpdateAccountParams, url string) { p.ProfileImage = &url })
}

func (s *AccountService) SetCoverImage(ctx context.Context, accountID uuid.UUID, key string) (models.Account, error) {
	return s.setImage(ctx, accountID, key, func(p *repository.UpdateAccountParams, url string) { p.CoverImage = &url })
}

func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (models.Account, error) {
	return s.storage.Account().GetAccountByID(ctx, id)
}

// Append video to the end of watch history. Rewatching the same video appends it again
func (s *AccountService) AppendWatchHistory(ctx context.Context, accountID uuid.UUID, videoID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.storage.Video().GetVideoByID(ctx, videoID); err != nil {
		return nil, err
	}

	return s.storage.Account().AppendWatchHistory(ctx, accountID, videoID)
}

// Subscribe to the channel. Subscribing twice is not an error
func (s *AccountService) Subscribe(ctx context.Context, subscriberID uuid.UUID, handle string) (models.Subscription, error) {
	channel, err := s.channel(ctx, subscriberID, handle)
	if err != nil {
		return models.Subscription{}, err
	}

	return s.storage.Subscription().Subscribe(ctx, subscriberID, channel.ID)
}

// Unsubscribe from the channel. Return false if there was no subscription
func (s *AccountService) Unsubscribe(ctx context.Context, subscriberID uuid.UUID, handle string) (bool, error) {
	channel, err := s.channel(ctx, subscriberID, handle)
	if err != nil {
		return false, err
	}

	return s.storage.Subscription().Unsubscribe(ctx, subscriberID, channel.ID)
}

func (s *AccountService) channel(ctx context.Context, subscriberID uuid.UUID, handle string) (models.Account, error) {
	channel, err := s.storage.Account().GetAccountByHandle(ctx, models.FoldLogin(handle))
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return channel, apperrors.ErrChannelNotFound
	case err != nil:
		return channel, err
	case channel.ID == subscriberID:
		return channel, apperrors.ErrSelfSubscription
	}

	return channel, nil
}

func (s *AccountService) setImage(ctx context.Context, accountID uuid.UUID, key string, set func(*repository.UpdateAccountParams, string)) (models.Account, error) {
	url, err := s.imageURL(key)
	if err != nil {
		return models.Account{}, err
	}
	if url == "" {
		return models.Account{}, apperrors.ErrMediaKeyInvalid
	}

	var p repository.UpdateAccountParams
	set(&p, url)

	account, err := s.storage.Account().UpdateAccount(ctx, accountID, p)
	if err != nil {
		return models.Account{}, err
	}

	return account.Sanitized(), nil
}

// Empty key means no image
func (s *AccountService) imageURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	return s.media.PublicURL(media.KindImage, key)
}
