package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/handlers/middleware"
	"github.com/nkiryanov/vidtube/internal/handlers/render"
	"github.com/nkiryanov/vidtube/internal/logger"
)

// Render service error with the matching status
// Unknown errors are logged and rendered as internal error
func serviceError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredential):
		render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
	case middleware.RejectReason(err) != "":
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrAccountNotFound):
		render.ServiceError(w, "Account not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrChannelNotFound):
		render.ServiceError(w, "Channel not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrVideoNotFound):
		render.ServiceError(w, "Video not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrAccountAlreadyExists):
		render.ServiceError(w, "Account with the handle or email already exists", http.StatusConflict)
	case errors.Is(err, apperrors.ErrSelfSubscription):
		render.ServiceError(w, "Can't subscribe to own channel", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrMediaKeyInvalid):
		render.ServiceError(w, "Media key is invalid", http.StatusBadRequest)
	default:
		l.Error("request failed", "err", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
