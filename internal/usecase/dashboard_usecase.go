package usecase

import (
	"context"

	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"
	"clinic-front-desk/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DashboardUsecase summarizes the front desk for the landing page
type DashboardUsecase interface {
	GetStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
}

type dashboardUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	queueRepo       repository.QueueEntryRepository
	sequencer       *service.QueueSequencer
}

func NewDashboardUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	queueRepo repository.QueueEntryRepository,
	sequencer *service.QueueSequencer,
) DashboardUsecase {
	return &dashboardUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		queueRepo:       queueRepo,
		sequencer:       sequencer,
	}
}

func (u *dashboardUsecase) GetStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	db := u.db.WithContext(ctx)
	today := u.sequencer.Today()
	available := true

	stats := &dto.DashboardStatsResponse{QueueDate: today}

	counts := []struct {
		name  string
		dest  *int64
		count func() (int64, error)
	}{
		{"doctors", &stats.Doctors, func() (int64, error) { return u.doctorRepo.Count(db, nil) }},
		{"available doctors", &stats.AvailableDoctors, func() (int64, error) {
			return u.doctorRepo.Count(db, &entity.DoctorFilter{IsAvailable: &available})
		}},
		{"patients", &stats.Patients, func() (int64, error) { return u.patientRepo.Count(db) }},
		{"appointments", &stats.Appointments, func() (int64, error) { return u.appointmentRepo.Count(db, nil) }},
		{"booked appointments", &stats.BookedAppointments, func() (int64, error) {
			return u.appointmentRepo.Count(db, &entity.AppointmentFilter{Status: entity.AppointmentStatusBooked})
		}},
		{"queue entries today", &stats.QueueToday, func() (int64, error) {
			return u.queueRepo.Count(db, &entity.QueueFilter{QueueDate: today})
		}},
		{"waiting queue entries today", &stats.QueueWaitingToday, func() (int64, error) {
			return u.queueRepo.Count(db, &entity.QueueFilter{QueueDate: today, Status: entity.QueueStatusWaiting})
		}},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			u.log.Warnf("Failed to count %s: %+v", c.name, err)
			return nil, err
		}
		*c.dest = n
	}

	return stats, nil
}
