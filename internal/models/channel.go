package models

import (
	"time"

	"github.com/google/uuid"
)

// Directed edge: subscriber follows channel
type Subscription struct {
	ID           uuid.UUID
	SubscriberID uuid.UUID
	ChannelID    uuid.UUID
	CreatedAt    time.Time
}

// Account seen as a channel by some viewer
type ChannelProfile struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	Handle          string
	DisplayName     string
	Email           string
	ProfileImage    string
	CoverImage      string
	SubscriberCount int64
	SubscribedCount int64
	IsSubscribed    bool
}
