package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/vidtube/internal/handlers/render"
	"github.com/nkiryanov/vidtube/internal/handlers/userctx"
	"github.com/nkiryanov/vidtube/internal/logger"
	"github.com/nkiryanov/vidtube/internal/repository"
	"github.com/nkiryanov/vidtube/internal/service/video"
)

func handlePublishVideo(vs videoService, l logger.Logger) http.Handler {
	type request struct {
		Title        string          `json:"title" validate:"required,max=200"`
		Description  string          `json:"description" validate:"max=5000"`
		VideoKey     string          `json:"videoKey" validate:"required"`
		ThumbnailKey string          `json:"thumbnailKey" validate:"required"`
		Duration     decimal.Decimal `json:"duration"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		if data.Duration.IsNegative() {
			render.ServiceError(w, "Duration must not be negative", http.StatusBadRequest)
			return
		}

		a, _ := userctx.FromContext(r.Context())
		v, err := vs.Publish(r.Context(), a.ID, video.PublishParams{
			Title:        data.Title,
			Description:  data.Description,
			VideoKey:     data.VideoKey,
			ThumbnailKey: data.ThumbnailKey,
			Duration:     data.Duration,
		})
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.Status(w, http.StatusCreated, newVideoResponse(v), "Video published successfully")
	})
}

func handleGetVideo(vs videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		viewer, _ := userctx.FromContext(r.Context())
		v, err := vs.Get(r.Context(), viewer.ID, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newVideoResponse(v), "Video fetched successfully")
	})
}

func handleUpdateVideo(vs videoService, l logger.Logger) http.Handler {
	type request struct {
		Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
		Description *string `json:"description" validate:"omitnil,max=5000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		v, err := vs.Update(r.Context(), a.ID, id, repository.UpdateVideoParams{
			Title:       data.Title,
			Description: data.Description,
		})
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newVideoResponse(v), "Video updated successfully")
	})
}

func handleTogglePublish(vs videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		v, err := vs.TogglePublish(r.Context(), a.ID, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newVideoResponse(v), "Video publish status toggled successfully")
	})
}

func handleDeleteVideo(vs videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		a, _ := userctx.FromContext(r.Context())
		if err := vs.Delete(r.Context(), a.ID, id); err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, struct{}{}, "Video deleted successfully")
	})
}

func handleUserVideos(vs videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "User id is invalid", http.StatusBadRequest)
			return
		}

		q, ok := bindListQuery(w, r)
		if !ok {
			return
		}

		viewer, _ := userctx.FromContext(r.Context())
		videos, err := vs.ListByOwner(r.Context(), viewer.ID, ownerID, q.params())
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newVideoListResponse(videos), "User videos fetched successfully")
	})
}

func handleSearchVideos(vs videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, ok := bindListQuery(w, r)
		if !ok {
			return
		}

		videos, err := vs.Search(r.Context(), q.Query, q.params())
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, newVideoListResponse(videos), "Videos fetched successfully")
	})
}

type listQuery struct {
	Query    string `json:"query" validate:"max=200"`
	Page     int    `json:"page" validate:"min=1"`
	Limit    int    `json:"limit" validate:"min=1,max=100"`
	SortType string `json:"sortType" validate:"oneof=asc desc"`
}

func (q listQuery) params() video.ListParams {
	return video.ListParams{Page: q.Page, Limit: q.Limit, Ascending: q.SortType == "asc"}
}

// Read paging from url query. Missing values get defaults: page 1, 10 per page, newest first
func bindListQuery(w http.ResponseWriter, r *http.Request) (listQuery, bool) {
	values := r.URL.Query()
	q := listQuery{
		Query:    values.Get("query"),
		Page:     1,
		Limit:    10,
		SortType: "desc",
	}
	if s := values.Get("sortType"); s != "" {
		q.SortType = s
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"limit", &q.Limit}} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			render.ServiceError(w, "Query parameter '"+p.name+"' must be a number", http.StatusBadRequest)
			return q, false
		}
		*p.dst = n
	}

	if err := render.Validate(w, q); err != nil {
		return q, false
	}
	return q, true
}

func videoID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Video id is invalid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
