// Package graph builds read models derived from accounts, subscription edges and videos.
// All views are computed on read, nothing is cached or written.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
)

type GraphService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *GraphService {
	return &GraphService{storage: storage}
}

// Channel profile as seen by viewer
// viewerID may be uuid.Nil for anonymous viewer, then IsSubscribed is always false
func (s *GraphService) ChannelProfile(ctx context.Context, handle string, viewerID uuid.UUID) (models.ChannelProfile, error) {
	channel, err := s.storage.Account().GetAccountByHandle(ctx, models.FoldLogin(handle))
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return models.ChannelProfile{}, apperrors.ErrChannelNotFound
	case err != nil:
		return models.ChannelProfile{}, err
	}

	subs := s.storage.Subscription()

	subscribers, err := subs.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("can't count subscribers. Err: %w", err)
	}

	subscribed, err := subs.CountSubscribed(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("can't count subscriptions. Err: %w", err)
	}

	var isSubscribed bool
	if viewerID != uuid.Nil {
		isSubscribed, err = subs.Exists(ctx, viewerID, channel.ID)
		if err != nil {
			return models.ChannelProfile{}, fmt.Errorf("can't check subscription. Err: %w", err)
		}
	}

	return models.ChannelProfile{
		ID:              channel.ID,
		CreatedAt:       channel.CreatedAt,
		Handle:          channel.Handle,
		DisplayName:     channel.DisplayName,
		Email:           channel.Email,
		ProfileImage:    channel.ProfileImage,
		CoverImage:      channel.CoverImage,
		SubscriberCount: subscribers,
		SubscribedCount: subscribed,
		IsSubscribed:    isSubscribed,
	}, nil
}

// Videos from account watch history in watch order, each with its current owner
// Rewatched videos appear as many times as watched, deleted videos are skipped
func (s *GraphService) WatchHistory(ctx context.Context, accountID uuid.UUID) ([]models.WatchedVideo, error) {
	account, err := s.storage.Account().GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if len(account.WatchHistory) == 0 {
		return []models.WatchedVideo{}, nil
	}

	videos, err := s.storage.Video().ListVideosByIDs(ctx, account.WatchHistory)
	if err != nil {
		return nil, fmt.Errorf("can't list watched videos. Err: %w", err)
	}

	videoByID := make(map[uuid.UUID]models.Video, len(videos))
	ownerIDs := make([]uuid.UUID, 0, len(videos))
	seenOwner := make(map[uuid.UUID]struct{}, len(videos))
	for _, v := range videos {
		videoByID[v.ID] = v
		if _, ok := seenOwner[v.OwnerID]; !ok {
			seenOwner[v.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, v.OwnerID)
		}
	}

	owners, err := s.storage.Account().ListAccountsByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("can't list video owners. Err: %w", err)
	}

	ownerByID := make(map[uuid.UUID]models.Owner, len(owners))
	for _, o := range owners {
		ownerByID[o.ID] = o.Owner()
	}

	history := make([]models.WatchedVideo, 0, len(account.WatchHistory))
	for _, id := range account.WatchHistory {
		v, ok := videoByID[id]
		if !ok {
			continue
		}
		history = append(history, models.WatchedVideo{Video: v, Owner: ownerByID[v.OwnerID]})
	}

	return history, nil
}
