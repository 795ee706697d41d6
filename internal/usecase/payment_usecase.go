package usecase

import (
	"context"
	"errors"

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
	ErrAppointmentCancelled   = errors.New("appointment cancelled or not found")
	ErrAppointmentAlreadyPaid = errors.New("appointment is already paid")
	ErrPaymentNotCompleted    = errors.New("payment failed")
)

type PaymentUsecase interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, appointmentID uuid.UUID) (*dto.PaymentOrderResponse, error)
	VerifyPayment(ctx context.Context, orderID string) (*dto.AppointmentResponse, error)
}

type paymentUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	auditService    service.AuditService
	gateway         gateway.PaymentGateway
	notifier        service.NotificationService
	currency        string
}

func NewPaymentUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	paymentGateway gateway.PaymentGateway,
	notifier service.NotificationService,
	currency string,
) PaymentUsecase {
	return &paymentUsecase{
		tx:              tx,
		log:             log,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		auditService:    auditService,
		gateway:         paymentGateway,
		notifier:        notifier,
		currency:        currency,
	}
}

// CreateOrder opens a gateway order for the appointment's locked amount. The
// appointment id travels as the order receipt.
func (u *paymentUsecase) CreateOrder(ctx context.Context, userID uuid.UUID, appointmentID uuid.UUID) (*dto.PaymentOrderResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.tx.Conn(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.UserID != userID {
		return nil, ErrAppointmentNotOwned
	}
	if appointment.IsCancelled() {
		return nil, ErrAppointmentCancelled
	}
	if appointment.IsPaid() {
		return nil, ErrAppointmentAlreadyPaid
	}

	order, err := u.gateway.CreateOrder(ctx, appointment.AmountInMinorUnits(), u.currency, appointment.ID.String())
	if err != nil {
		u.log.Warnf("Failed to create payment order for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"order_id":       order.ID,
		"amount":         order.Amount,
	}).Info("Payment order created")

	return converter.PaymentOrderToResponse(order), nil
}

// VerifyPayment marks the receipt's appointment paid once the gateway reports
// the order as paid. Verifying an already-paid order succeeds without a
// second confirmation mail.
func (u *paymentUsecase) VerifyPayment(ctx context.Context, orderID string) (*dto.AppointmentResponse, error) {
	order, err := u.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		u.log.Warnf("Failed to fetch payment order %s: %+v", orderID, err)
		return nil, err
	}
	if !order.IsPaid() {
		return nil, ErrPaymentNotCompleted
	}

	appointmentID, err := uuid.Parse(order.Receipt)
	if err != nil {
		u.log.Warnf("Payment order %s has a receipt that is not an appointment id: %q", orderID, order.Receipt)
		return nil, ErrAppointmentNotFound
	}

	var (
		changed     bool
		appointment *entity.Appointment
	)

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.appointmentRepo.MarkPaid(tx, appointmentID)
		if err != nil {
			u.log.Warnf("Failed to mark appointment %s paid: %+v", appointmentID, err)
			return err
		}

		appointment, err = u.appointmentRepo.FindByID(tx, appointmentID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}

		if rows == 0 {
			return nil
		}
		changed = true

		_ = u.auditService.LogUpdate(ctx, tx, service.UserActor(appointment.UserID), entity.AuditActionAppointmentPayment,
			entity.AuditEntityAppointment, appointmentID.String(),
			map[string]interface{}{"payment": false},
			map[string]interface{}{"payment": true, "order_id": order.ID, "amount": order.Amount})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		u.log.Infof("Payment for appointment %s already recorded", appointmentID)
		return converter.AppointmentToResponse(appointment), nil
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"order_id":       order.ID,
	}).Info("Payment confirmed")

	user, err := u.userRepo.FindByID(u.tx.Conn(ctx), appointment.UserID)
	if err != nil || user == nil {
		u.log.Warnf("Skipping payment mail for appointment %s: user lookup failed: %v", appointmentID, err)
	} else {
		u.notifier.PaymentConfirmed(appointmentNotice(user, appointment.Doctor, appointment))
	}

	return converter.AppointmentToResponse(appointment), nil
}
