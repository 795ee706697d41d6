package gateway

import (
	"context"
	"errors"
	"io"
)

// ImageStore uploads an image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, fileName string, content io.Reader) (string, error)
}

// ErrNotAnImage is returned when uploaded content is not a recognised image.
var ErrNotAnImage = errors.New("uploaded file is not an image")
