package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"
)

// ErrImageNotFound is returned by Get for unknown ids.
var ErrImageNotFound = errors.New("image not found")

type storedImage struct {
	fileName    string
	contentType string
	content     []byte
}

// InMemoryStore keeps uploaded images in process memory. It backs development
// setups without Cloudinary credentials and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	images  map[string]*storedImage
}

func NewInMemoryStore(baseURL string) *InMemoryStore {
	return &InMemoryStore{
		baseURL: baseURL,
		images:  make(map[string]*storedImage),
	}
}

func (s *InMemoryStore) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, contentType, err := sniffImage(content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	id := uuid.New().String()

	s.mu.Lock()
	s.images[id] = &storedImage{
		fileName:    path.Base(fileName),
		contentType: contentType,
		content:     buf.Bytes(),
	}
	s.mu.Unlock()

	return s.baseURL + "/" + id, nil
}

// Get returns the stored bytes and content type of an uploaded image.
func (s *InMemoryStore) Get(id string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, "", ErrImageNotFound
	}
	return img.content, img.contentType, nil
}
