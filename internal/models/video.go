package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Video struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerID     uuid.UUID
	Title       string
	Description string
	VideoURL    string
	Thumbnail   string
	Duration    decimal.Decimal // seconds
	Views       int64
	IsPublished bool
}

// Video from account watch history enriched with current owner data
type WatchedVideo struct {
	Video
	Owner Owner
}
