package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/vidtube/internal/models"
)

type accountResponse struct {
	ID           uuid.UUID   `json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Handle       string      `json:"handle"`
	DisplayName  string      `json:"displayName"`
	Email        string      `json:"email"`
	ProfileImage string      `json:"profileImage"`
	CoverImage   string      `json:"coverImage"`
	WatchHistory []uuid.UUID `json:"watchHistory"`
}

func newAccountResponse(a models.Account) accountResponse {
	history := a.WatchHistory
	if history == nil {
		history = []uuid.UUID{}
	}

	return accountResponse{
		ID:           a.ID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		Handle:       a.Handle,
		DisplayName:  a.DisplayName,
		Email:        a.Email,
		ProfileImage: a.ProfileImage,
		CoverImage:   a.CoverImage,
		WatchHistory: history,
	}
}

// Account as seen by other users
type userResponse struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"displayName"`
	ProfileImage string    `json:"profileImage"`
	CoverImage   string    `json:"coverImage"`
}

func newUserResponse(a models.Account) userResponse {
	return userResponse{
		ID:           a.ID,
		CreatedAt:    a.CreatedAt,
		Handle:       a.Handle,
		DisplayName:  a.DisplayName,
		ProfileImage: a.ProfileImage,
		CoverImage:   a.CoverImage,
	}
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type channelResponse struct {
	ID              uuid.UUID `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	Handle          string    `json:"handle"`
	DisplayName     string    `json:"displayName"`
	Email           string    `json:"email"`
	ProfileImage    string    `json:"profileImage"`
	CoverImage      string    `json:"coverImage"`
	SubscriberCount int64     `json:"subscribersCount"`
	SubscribedCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
}

func newChannelResponse(p models.ChannelProfile) channelResponse {
	return channelResponse{
		ID:              p.ID,
		CreatedAt:       p.CreatedAt,
		Handle:          p.Handle,
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		ProfileImage:    p.ProfileImage,
		CoverImage:      p.CoverImage,
		SubscriberCount: p.SubscriberCount,
		SubscribedCount: p.SubscribedCount,
		IsSubscribed:    p.IsSubscribed,
	}
}

type ownerResponse struct {
	ID           uuid.UUID `json:"id"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"displayName"`
	ProfileImage string    `json:"profileImage"`
}

type videoResponse struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	VideoURL    string          `json:"videoUrl"`
	Thumbnail   string          `json:"thumbnail"`
	Duration    decimal.Decimal `json:"duration"`
	Views       int64           `json:"views"`
	IsPublished bool            `json:"isPublished"`
}

func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:          v.ID,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		OwnerID:     v.OwnerID,
		Title:       v.Title,
		Description: v.Description,
		VideoURL:    v.VideoURL,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
	}
}

type watchedVideoResponse struct {
	videoResponse
	Owner ownerResponse `json:"owner"`
}

func newVideoListResponse(videos []models.Video) []videoResponse {
	resp := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, newVideoResponse(v))
	}
	return resp
}

func newWatchHistoryResponse(history []models.WatchedVideo) []watchedVideoResponse {
	resp := make([]watchedVideoResponse, 0, len(history))
	for _, w := range history {
		resp = append(resp, watchedVideoResponse{
			videoResponse: newVideoResponse(w.Video),
			Owner: ownerResponse{
				ID:           w.Owner.ID,
				Handle:       w.Owner.Handle,
				DisplayName:  w.Owner.DisplayName,
				ProfileImage: w.Owner.ProfileImage,
			},
		})
	}
	return resp
}
