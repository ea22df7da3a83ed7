package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/vidtube/internal/apperrors"
	"github.com/nkiryanov/vidtube/internal/handlers/render"
	"github.com/nkiryanov/vidtube/internal/handlers/userctx"
	"github.com/nkiryanov/vidtube/internal/metrics"
	"github.com/nkiryanov/vidtube/internal/models"
)

type authService interface {
	Authenticate(ctx context.Context, r *http.Request) (models.Account, error)
}

// Reject request if it has no valid access token, otherwise put the account to request context
func AuthMiddleware(as authService, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := as.Authenticate(r.Context(), r)
			if err != nil {
				reason := RejectReason(err)
				if reason == "" {
					l.Error("authentication failed", "uri", r.RequestURI, "err", err)
					render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				metrics.RecordAuthRejection(reason)
				l.Info("request rejected", "uri", r.RequestURI, "reason", reason)
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RejectReason describes why token was not accepted
// Empty string means error is not an authentication failure
func RejectReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return "invalid"
	case errors.Is(err, apperrors.ErrRefreshTokenSuperseded):
		return "superseded"
	case errors.Is(err, apperrors.ErrUnauthenticated) && errors.Is(err, apperrors.ErrAccountNotFound):
		return "unknown_account"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return "missing"
	default:
		return ""
	}
}
