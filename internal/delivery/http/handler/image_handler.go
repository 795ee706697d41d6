package handler

import (
	"errors"
	"net/http"
	"strconv"

	"medique-api/internal/infrastructure/storage"
	"medique-api/pkg/response"

	"github.com/gorilla/mux"
)

type imageSource interface {
	Get(id string) ([]byte, string, error)
}

// ImageHandler serves images held by the in-memory store. It is only routed
// when Cloudinary is not configured.
type ImageHandler struct {
	images imageSource
}

func NewImageHandler(images imageSource) *ImageHandler {
	return &ImageHandler{images: images}
}

func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	content, contentType, err := h.images.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			response.NotFound(w, "Image not found")
			return
		}
		response.InternalServerError(w, "Failed to get image")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
