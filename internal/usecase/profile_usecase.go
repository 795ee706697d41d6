package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"medique-api/internal/converter"
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/gateway"
	"medique-api/internal/domain/repository"
	"medique-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDataMissing    = errors.New("data missing")
	ErrInvalidPhone   = errors.New("phone number must be exactly 10 digits")
	ErrInvalidAddress = errors.New("address must be a JSON object with line1 and line2")
	ErrInvalidImage   = errors.New("uploaded file is not a valid image")
)

// ImageUpload is an optional image sent alongside a form.
type ImageUpload struct {
	FileName string
	Content  io.Reader
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest, image *ImageUpload) (*dto.UserResponse, error)
}

type profileUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
	imageStore   gateway.ImageStore
}

func NewProfileUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	imageStore gateway.ImageStore,
) ProfileUsecase {
	return &profileUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
		imageStore:   imageStore,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.tx.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest, image *ImageUpload) (*dto.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	dob := strings.TrimSpace(req.DOB)
	gender := strings.TrimSpace(req.Gender)

	if name == "" || phone == "" || dob == "" || gender == "" {
		return nil, ErrDataMissing
	}
	if !isTenDigits(phone) {
		return nil, ErrInvalidPhone
	}

	var address *entity.Address
	if strings.TrimSpace(req.Address) != "" {
		parsed, err := parseAddress(req.Address)
		if err != nil {
			return nil, err
		}
		address = parsed
	}

	// Upload before opening the transaction, the image store is remote.
	var imageURL string
	if image != nil {
		url, err := u.imageStore.Upload(ctx, image.FileName, image.Content)
		if err != nil {
			if errors.Is(err, gateway.ErrNotAnImage) {
				return nil, ErrInvalidImage
			}
			u.log.Warnf("Failed to upload profile image for user %s: %+v", userID, err)
			return nil, err
		}
		imageURL = url
	}

	var updated *entity.User
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByID(tx, userID)
		if err != nil {
			u.log.Warnf("Failed to find user %s: %+v", userID, err)
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		oldValue := profileSnapshot(user)

		user.Name = name
		user.Phone = phone
		user.DOB = dob
		user.Gender = gender
		if address != nil {
			user.Address = *address
		}
		if imageURL != "" {
			user.Image = imageURL
		}

		if err := u.userRepo.Update(tx, user); err != nil {
			u.log.Warnf("Failed to update user %s: %+v", userID, err)
			return err
		}

		_ = u.auditService.LogUpdate(ctx, tx, service.UserActor(userID), entity.AuditActionProfileUpdate,
			entity.AuditEntityUser, userID.String(), oldValue, profileSnapshot(user))

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.UserToResponse(updated), nil
}

func profileSnapshot(user *entity.User) map[string]interface{} {
	return map[string]interface{}{
		"name":    user.Name,
		"phone":   user.Phone,
		"dob":     user.DOB,
		"gender":  user.Gender,
		"address": user.Address,
		"image":   user.Image,
	}
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseAddress(raw string) (*entity.Address, error) {
	var address entity.Address
	if err := json.Unmarshal([]byte(raw), &address); err != nil {
		return nil, ErrInvalidAddress
	}
	return &address, nil
}
