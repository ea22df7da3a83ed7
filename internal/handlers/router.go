package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/handlers/middleware"
	"github.com/nkiryanov/vidtube/internal/logger"
	"github.com/nkiryanov/vidtube/internal/metrics"
	"github.com/nkiryanov/vidtube/internal/models"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/service/account"
	"github.com/nkiryanov/vidtube/internal/service/media"
	"github.com/nkiryanov/vidtube/internal/service/video"
)

const apiPrefix = "/api/v1"

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Services struct {
	Auth    authService
	Account accountService
	Graph   graphService
	Video   videoService
	Media   mediaService
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(s.Auth, logger)

	api := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		api.Handle(pattern, metrics.InstrumentHandler(pattern, h))
	}

	handle("POST /users/register", handleRegister(s.Account, logger))
	handle("POST /users/login", handleLogin(s.Auth, logger))
	handle("POST /users/refresh-token", handleRefreshToken(s.Auth, logger))
	handle("POST /users/logout", withAuth(handleLogout(s.Auth, logger)))
	handle("PATCH /users/change-password", withAuth(handleChangePassword(s.Account, logger)))
	handle("GET /users/current-user", withAuth(handleCurrentUser()))
	handle("PATCH /users/update-account", withAuth(handleUpdateAccount(s.Account, logger)))
	handle("PATCH /users/profile-image", withAuth(handleProfileImage(s.Account, logger)))
	handle("PATCH /users/cover-image", withAuth(handleCoverImage(s.Account, logger)))
	handle("GET /users/channel/{handle}", withAuth(handleChannelProfile(s.Graph, logger)))
	handle("GET /users/user/{id}", withAuth(handleGetUser(s.Account, logger)))
	handle("GET /users/watch-history", withAuth(handleWatchHistory(s.Graph, logger)))
	handle("PATCH /users/watch-history", withAuth(handleAppendWatchHistory(s.Account, logger)))

	handle("POST /subscriptions/{handle}", withAuth(handleSubscribe(s.Account, logger)))
	handle("DELETE /subscriptions/{handle}", withAuth(handleUnsubscribe(s.Account, logger)))

	handle("POST /media/upload-url", withAuth(handleUploadURL(s.Media, logger)))

	handle("POST /videos", withAuth(handlePublishVideo(s.Video, logger)))
	handle("GET /videos", withAuth(handleSearchVideos(s.Video, logger)))
	handle("GET /videos/user/{id}", withAuth(handleUserVideos(s.Video, logger)))
	handle("GET /videos/{id}", withAuth(handleGetVideo(s.Video, logger)))
	handle("PATCH /videos/{id}", withAuth(handleUpdateVideo(s.Video, logger)))
	handle("PATCH /videos/{id}/publish", withAuth(handleTogglePublish(s.Video, logger)))
	handle("DELETE /videos/{id}", withAuth(handleDeleteVideo(s.Video, logger)))

	root := http.NewServeMux()
	root.Handle(apiPrefix+"/", http.StripPrefix(apiPrefix, api))
	root.Handle("GET /metrics", metrics.Handler())

	handler := chain(root,
		middleware.RecoverMiddleware(logger),
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Login with handle or email
	// Has to return apperrors.ErrInvalidCredential if account not found or password is wrong
	Login(ctx context.Context, login string, password string) (models.Account, models.TokenPair, error)

	// Exchange refresh token to the new pair
	// Has to return apperrors.ErrRefreshTokenSuperseded if token is not the live one
	Refresh(ctx context.Context, refresh string) (models.Account, models.TokenPair, error)

	Logout(ctx context.Context, accountID uuid.UUID) error

	// Get request and return account if it authenticated or error
	Authenticate(ctx context.Context, r *http.Request) (models.Account, error)

	// Set auth tokens (access, refresh) to response or expire them
	SetTokens(w http.ResponseWriter, pair models.TokenPair)
	ClearTokens(w http.ResponseWriter)

	// Get refresh token from request
	GetRefresh(r *http.Request) (string, error)
}

type accountService interface {
	// Has to return apperrors.ErrAccountAlreadyExists if handle or email is taken
	Register(ctx context.Context, p account.RegisterParams) (models.Account, error)

	// Has to return apperrors.ErrInvalidCredential if old password does not match
	ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword string, newPassword string) error

	// Has to return apperrors.ErrAccountNotFound if there is no such account
	Get(ctx context.Context, id uuid.UUID) (models.Account, error)

	UpdateDetails(ctx context.Context, accountID uuid.UUID, displayName *string, email *string) (models.Account, error)
	SetProfileImage(ctx context.Context, accountID uuid.UUID, key string) (models.Account, error)
	SetCoverImage(ctx context.Context, accountID uuid.UUID, key string) (models.Account, error)
	AppendWatchHistory(ctx context.Context, accountID uuid.UUID, videoID uuid.UUID) ([]uuid.UUID, error)

	Subscribe(ctx context.Context, subscriberID uuid.UUID, handle string) (models.Subscription, error)
	Unsubscribe(ctx context.Context, subscriberID uuid.UUID, handle string) (bool, error)
}

type graphService interface {
	ChannelProfile(ctx context.Context, handle string, viewerID uuid.UUID) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, accountID uuid.UUID) ([]models.WatchedVideo, error)
}

type videoService interface {
	Publish(ctx context.Context, ownerID uuid.UUID, p video.PublishParams) (models.Video, error)

	// Has to return apperrors.ErrVideoNotFound for unpublished video of another owner
	Get(ctx context.Context, viewerID uuid.UUID, id uuid.UUID) (models.Video, error)

	// Have to return apperrors.ErrForbidden if account is not the owner
	Update(ctx context.Context, accountID uuid.UUID, id uuid.UUID, p repository.UpdateVideoParams) (models.Video, error)
	TogglePublish(ctx context.Context, accountID uuid.UUID, id uuid.UUID) (models.Video, error)
	Delete(ctx context.Context, accountID uuid.UUID, id uuid.UUID) error

	ListByOwner(ctx context.Context, viewerID uuid.UUID, ownerID uuid.UUID, p video.ListParams) ([]models.Video, error)
	Search(ctx context.Context, query string, p video.ListParams) ([]models.Video, error)
}

type mediaService interface {
	UploadURL(ctx context.Context, kind media.Kind, contentType string) (media.Upload, error)
}
