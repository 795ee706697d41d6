package usecase

import (
	"context"
	"errors"
	"strings"

	"medique-api/internal/converter"
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/gateway"
	"medique-api/internal/domain/repository"
	"medique-api/internal/service"
	"medique-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrDoctorEmailExists  = errors.New("doctor email already exists")
	ErrDoctorImageMissing = errors.New("image not selected")
	ErrInvalidFees        = errors.New("fees must be a positive amount")
)

type DoctorUsecase interface {
	AddDoctor(ctx context.Context, req *dto.AddDoctorRequest, image *ImageUpload) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	ListAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	ChangeAvailability(ctx context.Context, id uuid.UUID, available *bool) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
	imageStore   gateway.ImageStore
}

func NewDoctorUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	imageStore gateway.ImageStore,
) DoctorUsecase {
	return &doctorUsecase{
		tx:           tx,
		log:          log,
		doctorRepo:   doctorRepo,
		auditService: auditService,
		imageStore:   imageStore,
	}
}

// AddDoctor creates a doctor record with an uploaded profile image (admin only).
func (u *doctorUsecase) AddDoctor(ctx context.Context, req *dto.AddDoctorRequest, image *ImageUpload) (*dto.DoctorResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	fees, err := decimal.NewFromString(strings.TrimSpace(req.Fees))
	if err != nil || !fees.IsPositive() {
		return nil, ErrInvalidFees
	}

	address, err := parseAddress(req.Address)
	if err != nil {
		return nil, err
	}

	if image == nil {
		return nil, ErrDoctorImageMissing
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	imageURL, err := u.imageStore.Upload(ctx, image.FileName, image.Content)
	if err != nil {
		if errors.Is(err, gateway.ErrNotAnImage) {
			return nil, ErrInvalidImage
		}
		u.log.Warnf("Failed to upload doctor image: %+v", err)
		return nil, err
	}

	doctor := &entity.Doctor{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    string(hashedPassword),
		Image:       imageURL,
		Speciality:  strings.TrimSpace(req.Speciality),
		Degree:      strings.TrimSpace(req.Degree),
		Experience:  strings.TrimSpace(req.Experience),
		About:       strings.TrimSpace(req.About),
		Available:   true,
		Fees:        fees,
		Address:     *address,
		SlotsBooked: entity.SlotMap{},
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.doctorRepo.Create(tx, doctor); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrDoctorEmailExists
			}
			u.log.Warnf("Failed to create doctor: %+v", err)
			return err
		}

		_ = u.auditService.LogCreate(ctx, tx, service.AdminActor(), entity.AuditActionDoctorCreate,
			entity.AuditEntityDoctor, doctor.ID.String(), map[string]interface{}{
				"name":       doctor.Name,
				"email":      doctor.Email,
				"speciality": doctor.Speciality,
				"fees":       doctor.Fees.String(),
			})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.DoctorToResponse(doctor, true), nil
}

// ListDoctors is the public directory, emails are not exposed.
func (u *doctorUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	return u.list(ctx, false)
}

func (u *doctorUsecase) ListAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	return u.list(ctx, true)
}

func (u *doctorUsecase) list(ctx context.Context, withEmail bool) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors, withEmail),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor, false), nil
}

// ChangeAvailability sets the availability flag, or toggles it when available is nil.
func (u *doctorUsecase) ChangeAvailability(ctx context.Context, id uuid.UUID, available *bool) (*dto.DoctorResponse, error) {
	var updated *entity.Doctor

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		doctor, err := u.doctorRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", id, err)
			return err
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}

		next := !doctor.Available
		if available != nil {
			next = *available
		}

		if err := u.doctorRepo.UpdateAvailability(tx, id, next); err != nil {
			u.log.Warnf("Failed to update availability of doctor %s: %+v", id, err)
			return err
		}

		_ = u.auditService.LogUpdate(ctx, tx, service.AdminActor(), entity.AuditActionDoctorAvailability,
			entity.AuditEntityDoctor, id.String(),
			map[string]interface{}{"available": doctor.Available},
			map[string]interface{}{"available": next})

		doctor.Available = next
		updated = doctor
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.DoctorToResponse(updated, true), nil
}
