package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
)

// Create account with fields derived from handle:
// 'Display <handle>', '<handle>@example.com', 'https://cdn/<handle>.png'
func CreateAccount(t *testing.T, accounts repository.AccountRepo, handle string) models.Account {
	t.Helper()

	account, err := accounts.CreateAccount(t.Context(), repository.CreateAccountParams{
		Handle:       handle,
		DisplayName:  "Display " + handle,
		Email:        handle + "@example.com",
		PasswordHash: "hash-" + handle,
		ProfileImage: "https://cdn/" + handle + ".png",
	})
	require.NoError(t, err, "account %q could not be created", handle)

	return account
}

// Create published video of the owner with fields derived from title and 61.5 seconds long
func CreateVideo(t *testing.T, videos repository.VideoRepo, ownerID uuid.UUID, title string) models.Video {
	t.Helper()

	video, err := videos.CreateVideo(t.Context(), models.Video{
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		VideoURL:    "https://cdn/videos/" + title + ".mp4",
		Thumbnail:   "https://cdn/thumbnails/" + title + ".png",
		Duration:    decimal.RequireFromString("61.5"),
		IsPublished: true,
	})
	require.NoError(t, err, "video %q could not be created", title)

	return video
}
