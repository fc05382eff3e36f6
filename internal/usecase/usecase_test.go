package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-front-desk/config"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/repository"
	"clinic-front-desk/internal/service"
	"clinic-front-desk/internal/testutil"
	"clinic-front-desk/pkg/jwt"
	"clinic-front-desk/pkg/metrics"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	now       time.Time
	sequencer *service.QueueSequencer
	metrics   *metrics.Metrics
	jwt       *jwt.JWTService

	auth         AuthUsecase
	users        UserUsecase
	doctors      DoctorUsecase
	patients     PatientUsecase
	appointments AppointmentUsecase
	queue        QueueUsecase
	auditLogs    AuditLogUsecase
	dashboard    DashboardUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvIn(t, time.UTC)
}

// newTestEnvIn builds the usecases with loc as the clinic timezone
func newTestEnvIn(t *testing.T, loc *time.Location) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.NewLogger()
	m := metrics.NewMetrics("test")

	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	queueRepo := repository.NewQueueEntryRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	env := &testEnv{
		db:      db,
		now:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		metrics: m,
		jwt:     jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour}),
	}

	env.sequencer = service.NewQueueSequencer(queueRepo, nil, log, m, time.UTC)
	env.sequencer.SetClock(func() time.Time { return env.now })
	t.Cleanup(env.sequencer.Stop)

	auditService := service.NewAuditService(log, auditLogRepo)

	env.auth = NewAuthUsecase(db, log, userRepo, env.jwt, auditService, m)
	env.users = NewUserUsecase(db, log, userRepo, auditService)
	env.doctors = NewDoctorUsecase(db, log, doctorRepo, appointmentRepo, queueRepo, auditService)
	env.patients = NewPatientUsecase(db, log, patientRepo, appointmentRepo, queueRepo, auditService)
	env.appointments = NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, patientRepo, auditService, m, loc)
	env.queue = NewQueueUsecase(db, log, queueRepo, doctorRepo, patientRepo, env.sequencer, auditService, m)
	env.auditLogs = NewAuditLogUsecase(db, log, auditLogRepo)
	env.dashboard = NewDashboardUsecase(db, log, doctorRepo, patientRepo, appointmentRepo, queueRepo, env.sequencer)

	return env
}

func (e *testEnv) createDoctor(t *testing.T, name, specialization, location string) *dto.DoctorResponse {
	t.Helper()
	doctor, err := e.doctors.CreateDoctor(context.Background(), &dto.CreateDoctorRequest{
		Name:           name,
		Specialization: specialization,
		Gender:         string(entity.GenderFemale),
		Location:       location,
	})
	require.NoError(t, err)
	return doctor
}

func (e *testEnv) createPatient(t *testing.T, name string) *dto.PatientResponse {
	t.Helper()
	patient, err := e.patients.CreatePatient(context.Background(), &dto.CreatePatientRequest{
		Name:   name,
		Gender: string(entity.GenderMale),
	})
	require.NoError(t, err)
	return patient
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
