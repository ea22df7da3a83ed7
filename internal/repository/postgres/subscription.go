package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/vidtube/internal/models"
)

type SubscriptionRepo struct {
	DB DBTX
}

// Create edge or return the existing one
// No-op update makes the conflicting row visible to RETURNING, also when it was committed concurrently
const subscribe = `-- name: Subscribe
INSERT INTO subscriptions (id, subscriber_id, channel_id)
VALUES ($1, $2, $3)
ON CONFLICT (subscriber_id, channel_id) DO UPDATE SET subscriber_id = EXCLUDED.subscriber_id
RETURNING id, created_at, subscriber_id, channel_id
`

func (r *SubscriptionRepo) Subscribe(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (models.Subscription, error) {
	rows, _ := r.DB.Query(ctx, subscribe, uuid.New(), subscriberID, channelID)
	sub, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Subscription, error) {
		var s models.Subscription
		err := row.Scan(&s.ID, &s.CreatedAt, &s.SubscriberID, &s.ChannelID)
		return s, err
	})
	if err != nil {
		return sub, fmt.Errorf("db error: %w", err)
	}

	return sub, nil
}

const unsubscribe = `-- name: Unsubscribe
DELETE FROM subscriptions
WHERE subscriber_id = $1 AND channel_id = $2
`

func (r *SubscriptionRepo) Unsubscribe(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, unsubscribe, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

const countSubscribers = `-- name: CountSubscribers
SELECT count(*) FROM subscriptions
WHERE channel_id = $1
`

func (r *SubscriptionRepo) CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error) {
	return r.count(ctx, countSubscribers, channelID)
}

const countSubscribed = `-- name: CountSubscribed
SELECT count(*) FROM subscriptions
WHERE subscriber_id = $1
`

func (r *SubscriptionRepo) CountSubscribed(ctx context.Context, subscriberID uuid.UUID) (int64, error) {
	return r.count(ctx, countSubscribed, subscriberID)
}

const subscriptionExists = `-- name: SubscriptionExists
SELECT EXISTS (
	SELECT 1 FROM subscriptions
	WHERE subscriber_id = $1 AND channel_id = $2
)
`

func (r *SubscriptionRepo) Exists(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, subscriptionExists, subscriberID, channelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *SubscriptionRepo) count(ctx context.Context, query string, id uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.QueryRow(ctx, query, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
