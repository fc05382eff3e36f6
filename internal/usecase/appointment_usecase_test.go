package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAppointment_ReturnsRelations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")
	patient := env.createPatient(t, "Budi")

	appointment, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		PatientID:       patient.ID.String(),
		AppointmentDate: "2026-03-05T10:30:00Z",
		Notes:           "follow up",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.AppointmentStatusBooked), appointment.Status)
	assert.True(t, appointment.AppointmentDate.Equal(time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC)))
	require.NotNil(t, appointment.Doctor)
	require.NotNil(t, appointment.Patient)
	assert.Equal(t, "Dr. Ana", appointment.Doctor.Name)
	assert.Equal(t, "Budi", appointment.Patient.Name)
}

func TestCreateAppointment_MissingDoctorWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Budi")
	missing := uuid.New()

	_, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        missing.String(),
		PatientID:       patient.ID.String(),
		AppointmentDate: "2026-03-05",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Contains(t, apperror.MessageOf(err), missing.String())

	list, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCreateAppointment_MissingPatientAndBadDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")

	_, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		PatientID:       uuid.NewString(),
		AppointmentDate: "2026-03-05",
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		PatientID:       uuid.NewString(),
		AppointmentDate: "next tuesday",
	})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestAppointmentSetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")
	patient := env.createPatient(t, "Budi")

	appointment, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		PatientID:       patient.ID.String(),
		AppointmentDate: "2026-03-05",
	})
	require.NoError(t, err)

	longAgo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Model(&entity.Appointment{}).Where("id = ?", appointment.ID).UpdateColumn("updated_at", longAgo).Error)

	completed, err := env.appointments.SetStatus(ctx, appointment.ID, entity.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	assert.True(t, completed.UpdatedAt.After(longAgo), "response carries the refreshed updated_at")
	require.NotNil(t, completed.Doctor)

	// no transition rules
	canceled, err := env.appointments.SetStatus(ctx, appointment.ID, entity.AppointmentStatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, "canceled", canceled.Status)

	stored, err := env.appointments.GetAppointment(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "canceled", stored.Status)

	_, err = env.appointments.SetStatus(ctx, uuid.New(), entity.AppointmentStatusCompleted)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetAllAppointments_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")
	bram := env.createDoctor(t, "Dr. Bram", "Dermatology", "Room 4")
	patient := env.createPatient(t, "Budi")

	book := func(doctorID uuid.UUID, date string) *dto.AppointmentResponse {
		a, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
			DoctorID:        doctorID.String(),
			PatientID:       patient.ID.String(),
			AppointmentDate: date,
		})
		require.NoError(t, err)
		return a
	}
	late := book(ana.ID, "2026-03-10T15:00:00Z")
	early := book(ana.ID, "2026-03-02T08:00:00Z")
	other := book(bram.ID, "2026-03-05T09:00:00Z")

	_, err := env.appointments.SetStatus(ctx, other.ID, entity.AppointmentStatusCompleted)
	require.NoError(t, err)

	byDoctor, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{DoctorID: ana.ID.String()})
	require.NoError(t, err)
	require.Equal(t, 2, byDoctor.Total)
	assert.Equal(t, early.ID, byDoctor.Appointments[0].ID)
	assert.Equal(t, late.ID, byDoctor.Appointments[1].ID)
	require.NotNil(t, byDoctor.Appointments[0].Doctor)

	byStatus, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, 1, byStatus.Total)
	assert.Equal(t, other.ID, byStatus.Appointments[0].ID)

	// date-only end bound includes the whole day
	inRange, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{StartDate: "2026-03-02", EndDate: "2026-03-05"})
	require.NoError(t, err)
	assert.Equal(t, 2, inRange.Total)

	// a single bound is ignored
	oneBound, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{StartDate: "2026-03-09"})
	require.NoError(t, err)
	assert.Equal(t, 3, oneBound.Total)
}

func TestGetAllAppointments_RangeAcrossOffsets(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	env := newTestEnvIn(t, wib)
	ctx := context.Background()
	doctor := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")
	patient := env.createPatient(t, "Budi")

	book := func(date string) *dto.AppointmentResponse {
		a, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
			DoctorID:        doctor.ID.String(),
			PatientID:       patient.ID.String(),
			AppointmentDate: date,
		})
		require.NoError(t, err)
		return a
	}
	lateEvening := book("2026-03-05T20:00:00Z") // 03:00 on the 6th in WIB
	midnight := book("2026-03-06")              // 17:00Z on the 5th
	morning := book("2026-03-06T08:00:00+07:00")
	book("2026-03-05T16:30:00Z") // 23:30 on the 5th in WIB
	book("2026-03-06T18:00:00Z") // 01:00 on the 7th in WIB

	assert.True(t, midnight.AppointmentDate.Equal(time.Date(2026, 3, 6, 0, 0, 0, 0, wib)))

	sameDay, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{StartDate: "2026-03-06", EndDate: "2026-03-06"})
	require.NoError(t, err)
	require.Equal(t, 3, sameDay.Total)
	assert.Equal(t, midnight.ID, sameDay.Appointments[0].ID)
	assert.Equal(t, lateEvening.ID, sameDay.Appointments[1].ID)
	assert.Equal(t, morning.ID, sameDay.Appointments[2].ID)

	// RFC3339 bounds in another offset select the same instants
	explicit, err := env.appointments.GetAllAppointments(ctx, &dto.AppointmentFilterRequest{
		StartDate: "2026-03-06T00:00:00+07:00",
		EndDate:   "2026-03-06T01:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, explicit.Total)
}

func TestUpdateAppointment_MergesAndRevalidatesDoctor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")
	patient := env.createPatient(t, "Budi")

	appointment, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		PatientID:       patient.ID.String(),
		AppointmentDate: "2026-03-05",
		Notes:           "first visit",
	})
	require.NoError(t, err)

	_, err = env.appointments.UpdateAppointment(ctx, appointment.ID, &dto.UpdateAppointmentRequest{DoctorID: strPtr(uuid.NewString())})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	updated, err := env.appointments.UpdateAppointment(ctx, appointment.ID, &dto.UpdateAppointmentRequest{Status: strPtr("completed")})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "first visit", updated.Notes)
	assert.Equal(t, doctor.ID, updated.DoctorID)
}

func TestDeleteAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "Dr. Ana", "Cardiology", "Room 3")
	patient := env.createPatient(t, "Budi")

	appointment, err := env.appointments.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		PatientID:       patient.ID.String(),
		AppointmentDate: "2026-03-05",
	})
	require.NoError(t, err)

	require.NoError(t, env.appointments.DeleteAppointment(ctx, appointment.ID))
	assert.ErrorIs(t, env.appointments.DeleteAppointment(ctx, appointment.ID), ErrAppointmentNotFound)
}
