package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"medique-api/internal/usecase"
)

const (
	maxUploadSize  = 5 << 20
	imageFormField = "image"
)

// readImage parses a multipart form and returns its optional image part. The
// returned closer must be called once the upload has been consumed.
func readImage(r *http.Request) (*usecase.ImageUpload, func(), error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, func() {}, err
	}

	file, header, err := r.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}

	return &usecase.ImageUpload{FileName: header.Filename, Content: file}, closeFile(file), nil
}

func closeFile(f multipart.File) func() {
	return func() { f.Close() }
}
