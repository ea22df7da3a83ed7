package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Handle       string
	DisplayName  string
	Email        string
	ProfileImage string
	CoverImage   string

	// Ordered as watched, oldest first. May contain the same video several times
	WatchHistory []uuid.UUID

	PasswordHash string `json:"-"`

	// The only refresh token accepted for the account. Empty if there is no live session
	RefreshToken string `json:"-"`
}

// Sanitized returns copy of the account without credential data
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	a.RefreshToken = ""
	return a
}

// Public part of account shown next to the videos it owns
type Owner struct {
	ID           uuid.UUID
	Handle       string
	DisplayName  string
	ProfileImage string
}

func (a Account) Owner() Owner {
	return Owner{
		ID:           a.ID,
		Handle:       a.Handle,
		DisplayName:  a.DisplayName,
		ProfileImage: a.ProfileImage,
	}
}

// Handles and emails are compared case-insensitively and stored folded
func FoldLogin(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
