package usecase

import (
	"context"

	"medique-api/internal/converter"
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const latestAppointmentsLimit = 5

type DashboardUsecase interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
}

func NewDashboardUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
) DashboardUsecase {
	return &dashboardUsecase{
		tx:              tx,
		log:             log,
		doctorRepo:      doctorRepo,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
	}
}

// GetDashboard runs the four independent queries concurrently.
func (u *dashboardUsecase) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		doctors, appointments, patients int64
		latest                          []entity.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		doctors, err = u.doctorRepo.Count(u.tx.Conn(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		appointments, err = u.appointmentRepo.Count(u.tx.Conn(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = u.userRepo.Count(u.tx.Conn(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		latest, err = u.appointmentRepo.FindLatest(u.tx.Conn(gctx), latestAppointmentsLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build dashboard: %+v", err)
		return nil, err
	}

	return &dto.DashboardResponse{
		Doctors:            doctors,
		Appointments:       appointments,
		Patients:           patients,
		LatestAppointments: converter.AppointmentsToResponses(latest),
	}, nil
}
