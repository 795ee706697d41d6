package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"medique-api/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *logrus.Logger
}

func NewCloudinaryStore(cfg config.CloudinaryConfig, log *logrus.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{
		cld:    cld,
		folder: cfg.Folder,
		log:    log,
	}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	body, _, err := sniffImage(content)
	if err != nil {
		return "", err
	}

	resp, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		s.log.Warnf("Failed to upload %s to cloudinary: %+v", fileName, err)
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		s.log.Warnf("Cloudinary rejected %s: %s", fileName, resp.Error.Message)
		return "", errors.New("cloudinary upload: " + resp.Error.Message)
	}

	return resp.SecureURL, nil
}
