package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/vidtube/internal/handlers/middleware"
	"github.com/nkiryanov/vidtube/internal/handlers/render"
	"github.com/nkiryanov/vidtube/internal/handlers/userctx"
	"github.com/nkiryanov/vidtube/internal/logger"
	"github.com/nkiryanov/vidtube/internal/metrics"
	"github.com/nkiryanov/vidtube/internal/service/account"
)

func handleRegister(as accountService, l logger.Logger) http.Handler {
	type request struct {
		Handle          string `json:"handle" validate:"required,min=3,max=50,handle"`
		DisplayName     string `json:"displayName" validate:"required,max=100"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8,max=256"`
		ProfileImageKey string `json:"profileImageKey"`
		CoverImageKey   string `json:"coverImageKey"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		a, err := as.Register(r.Context(), account.RegisterParams{
			Handle:          data.Handle,
			DisplayName:     data.DisplayName,
			Email:           data.Email,
			Password:        data.Password,
			ProfileImageKey: data.ProfileImageKey,
			CoverImageKey:   data.CoverImageKey,
		})
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.Status(w, http.StatusCreated, newAccountResponse(a), "User registered successfully")
	})
}

func handleLogin(as authService, l logger.Logger) http.Handler {
	type request struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		User accountResponse `json:"user"`
		tokensResponse
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		a, pair, err := as.Login(r.Context(), data.Login, data.Password)
		if err != nil {
			serviceError(w, l, err)
			return
		}
		metrics.RecordSessionRotation("login")

		as.SetTokens(w, pair)
		render.JSON(w, response{
			User:           newAccountResponse(a),
			tokensResponse: tokensResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value},
		}, "User logged in successfully")
	})
}

func handleLogout(as authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := userctx.FromContext(r.Context())

		if err := as.Logout(r.Context(), a.ID); err != nil {
			serviceError(w, l, err)
			return
		}

		as.ClearTokens(w)
		render.JSON(w, struct{}{}, "User logged out")
	})
}

// Exchange refresh token from cookie or body to the new pair
func handleRefreshToken(as authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := as.GetRefresh(r)
		if err != nil {
			reject(w, l, err)
			return
		}

		_, pair, err := as.Refresh(r.Context(), refresh)
		if err != nil {
			reject(w, l, err)
			return
		}
		metrics.RecordSessionRotation("refresh")

		as.SetTokens(w, pair)
		render.JSON(w, tokensResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value}, "Access token refreshed")
	})
}

func reject(w http.ResponseWriter, l logger.Logger, err error) {
	if reason := middleware.RejectReason(err); reason != "" {
		metrics.RecordAuthRejection(reason)
		l.Info("refresh rejected", "reason", reason)
	}
	serviceError(w, l, err)
}

func handleChangePassword(as accountService, l logger.Logger) http.Handler {
	type request struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8,max=256"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		if err := as.ChangePassword(r.Context(), a.ID, data.OldPassword, data.NewPassword); err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, struct{}{}, "Password changed successfully")
	})
}

func handleCurrentUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := userctx.FromContext(r.Context())
		render.JSON(w, newAccountResponse(a), "Current user fetched successfully")
	})
}

func handleGetUser(as accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "User id is invalid", http.StatusBadRequest)
			return
		}

		a, err := as.Get(r.Context(), id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newUserResponse(a), "User fetched successfully")
	})
}

func handleUpdateAccount(as accountService, l logger.Logger) http.Handler {
	type request struct {
		DisplayName *string `json:"displayName" validate:"omitnil,min=1,max=100"`
		Email       *string `json:"email" validate:"omitnil,email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		if data.DisplayName == nil && data.Email == nil {
			render.ServiceError(w, "Nothing to update", http.StatusBadRequest)
			return
		}

		a, _ := userctx.FromContext(r.Context())
		updated, err := as.UpdateDetails(r.Context(), a.ID, data.DisplayName, data.Email)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newAccountResponse(updated), "Account details updated successfully")
	})
}

type imageRequest struct {
	Key string `json:"key" validate:"required"`
}

func handleProfileImage(as accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[imageRequest](w, r)
		if err != nil {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		updated, err := as.SetProfileImage(r.Context(), a.ID, data.Key)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newAccountResponse(updated), "Profile image updated successfully")
	})
}

func handleCoverImage(as accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[imageRequest](w, r)
		if err != nil {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		updated, err := as.SetCoverImage(r.Context(), a.ID, data.Key)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newAccountResponse(updated), "Cover image updated successfully")
	})
}

func handleChannelProfile(gs graphService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := userctx.FromContext(r.Context())

		profile, err := gs.ChannelProfile(r.Context(), r.PathValue("handle"), viewer.ID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newChannelResponse(profile), "Channel fetched successfully")
	})
}

func handleWatchHistory(gs graphService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := userctx.FromContext(r.Context())

		history, err := gs.WatchHistory(r.Context(), a.ID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newWatchHistoryResponse(history), "Watch history fetched successfully")
	})
}

func handleAppendWatchHistory(as accountService, l logger.Logger) http.Handler {
	type request struct {
		VideoID uuid.UUID `json:"videoId" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		history, err := as.AppendWatchHistory(r.Context(), a.ID, data.VideoID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, history, "Video added to watch history")
	})
}
