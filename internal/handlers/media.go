package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/vidtube/internal/handlers/render"
	"github.com/nkiryanov/vidtube/internal/logger"
	"github.com/nkiryanov/vidtube/internal/service/media"
)

func handleUploadURL(ms mediaService, l logger.Logger) http.Handler {
	type request struct {
		Kind        string `json:"kind" validate:"required,oneof=image video thumbnail"`
		ContentType string `json:"contentType" validate:"required,max=100"`
	}
	type response struct {
		Key       string    `json:"key"`
		URL       string    `json:"url"`
		Method    string    `json:"method"`
		ExpiresAt time.Time `json:"expiresAt"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		upload, err := ms.UploadURL(r.Context(), media.Kind(data.Kind), data.ContentType)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			Key:       upload.Key,
			URL:       upload.URL,
			Method:    upload.Method,
			ExpiresAt: upload.ExpiresAt,
		}, "Upload url created")
	})
}
