package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/handlers/render"
	"github.com/nkiryanov/vidtube/internal/handlers/userctx"
	"github.com/nkiryanov/vidtube/internal/logger"
)

func handleSubscribe(as accountService, l logger.Logger) http.Handler {
	type response struct {
		ID           uuid.UUID `json:"id"`
		SubscriberID uuid.UUID `json:"subscriberId"`
		ChannelID    uuid.UUID `json:"channelId"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := userctx.FromContext(r.Context())

		s, err := as.Subscribe(r.Context(), a.ID, r.PathValue("handle"))
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			ID:           s.ID,
			SubscriberID: s.SubscriberID,
			ChannelID:    s.ChannelID,
			CreatedAt:    s.CreatedAt,
		}, "Subscribed successfully")
	})
}

func handleUnsubscribe(as accountService, l logger.Logger) http.Handler {
	type response struct {
		Removed bool `json:"removed"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := userctx.FromContext(r.Context())

		removed, err := as.Unsubscribe(r.Context(), a.ID, r.PathValue("handle"))
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{Removed: removed}, "Unsubscribed successfully")
	})
}
