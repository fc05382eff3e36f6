package usecase

import (
	"context"
	"time"

	"clinic-front-desk/internal/converter"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"
	"clinic-front-desk/internal/service"
	"clinic-front-desk/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
	UpdateAppointment(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	SetStatus(ctx context.Context, appointmentID uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	auditService    service.AuditService
	metrics         *metrics.Metrics
	location        *time.Location
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	m *metrics.Metrics,
	location *time.Location,
) AppointmentUsecase {
	if location == nil {
		location = time.Local
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
		metrics:         m,
		location:        location,
	}
}

// CreateAppointment checks doctor and patient inside the same transaction as the insert
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	doctorID, err := parseID(req.DoctorID)
	if err != nil {
		return nil, err
	}
	patientID, err := parseID(req.PatientID)
	if err != nil {
		return nil, err
	}
	appointmentDate, err := parseDateTime(req.AppointmentDate, u.location)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requireDoctor(tx, doctorID); err != nil {
		return nil, err
	}
	if err := u.requirePatient(tx, patientID); err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		AppointmentDate: appointmentDate,
		Status:          entity.AppointmentStatusBooked,
		Notes:           req.Notes,
		DoctorID:        doctorID,
		PatientID:       patientID,
	}
	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		if isForeignKeyError(err) {
			return nil, notFound(ErrDoctorNotFound, "Doctor", doctorID)
		}
		return nil, err
	}

	created, err := u.appointmentRepo.FindByID(tx, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment: %+v", err)
		return nil, err
	}

	response := converter.AppointmentToResponse(created)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), response); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if u.metrics != nil {
		u.metrics.AppointmentsCreated.Inc()
	}

	return response, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, notFound(ErrAppointmentNotFound, "Appointment", appointmentID)
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	domainFilter, err := u.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), domainFilter)
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	responses := converter.AppointmentsToResponses(appointments)

	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}, nil
}

func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, notFound(ErrAppointmentNotFound, "Appointment", appointmentID)
	}

	oldValue := converter.AppointmentToResponse(appointment)

	if req.DoctorID != nil {
		doctorID, err := parseID(*req.DoctorID)
		if err != nil {
			return nil, err
		}
		if err := u.requireDoctor(tx, doctorID); err != nil {
			return nil, err
		}
		appointment.DoctorID = doctorID
	}
	if req.PatientID != nil {
		patientID, err := parseID(*req.PatientID)
		if err != nil {
			return nil, err
		}
		if err := u.requirePatient(tx, patientID); err != nil {
			return nil, err
		}
		appointment.PatientID = patientID
	}
	if req.AppointmentDate != nil {
		appointmentDate, err := parseDateTime(*req.AppointmentDate, u.location)
		if err != nil {
			return nil, err
		}
		appointment.AppointmentDate = appointmentDate
	}
	if req.Status != nil {
		status := entity.AppointmentStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		appointment.Status = status
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment: %+v", err)
		return nil, err
	}

	updated, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment: %+v", err)
		return nil, err
	}

	newValue := converter.AppointmentToResponse(updated)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionAppointmentUpdate, "appointment", appointmentID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// SetStatus overwrites the status regardless of the current one
func (u *appointmentUsecase) SetStatus(ctx context.Context, appointmentID uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, notFound(ErrAppointmentNotFound, "Appointment", appointmentID)
	}

	oldStatus := appointment.Status
	if _, err := u.appointmentRepo.UpdateStatus(tx, appointmentID, status); err != nil {
		u.log.Warnf("Failed to update appointment status: %+v", err)
		return nil, err
	}

	updated, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionAppointmentStatus, "appointment", appointmentID.String(),
		map[string]interface{}{"status": oldStatus}, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if u.metrics != nil {
		u.metrics.StatusTransitions.WithLabelValues("appointment", string(status)).Inc()
	}

	return converter.AppointmentToResponse(updated), nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return err
	}
	if appointment == nil {
		return notFound(ErrAppointmentNotFound, "Appointment", appointmentID)
	}

	rows, err := u.appointmentRepo.Delete(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to delete appointment: %+v", err)
		return err
	}
	if rows == 0 {
		return notFound(ErrAppointmentNotFound, "Appointment", appointmentID)
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionAppointmentDelete, "appointment", appointmentID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *appointmentUsecase) requireDoctor(tx *gorm.DB, doctorID uuid.UUID) error {
	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return err
	}
	if doctor == nil {
		return notFound(ErrDoctorNotFound, "Doctor", doctorID)
	}
	return nil
}

func (u *appointmentUsecase) requirePatient(tx *gorm.DB, patientID uuid.UUID) error {
	patient, err := u.patientRepo.FindByID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return err
	}
	if patient == nil {
		return notFound(ErrPatientNotFound, "Patient", patientID)
	}
	return nil
}

func (u *appointmentUsecase) toDomainFilter(filter *dto.AppointmentFilterRequest) (*entity.AppointmentFilter, error) {
	if filter == nil {
		return nil, nil
	}

	doctorID, err := parseOptionalID(filter.DoctorID)
	if err != nil {
		return nil, err
	}
	patientID, err := parseOptionalID(filter.PatientID)
	if err != nil {
		return nil, err
	}

	domainFilter := &entity.AppointmentFilter{
		DoctorID:  doctorID,
		PatientID: patientID,
	}
	if filter.Status != "" {
		status := entity.AppointmentStatus(filter.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		domainFilter.Status = status
	}

	// the range only applies when both ends are given
	if filter.StartDate != "" && filter.EndDate != "" {
		start, err := parseDateTime(filter.StartDate, u.location)
		if err != nil {
			return nil, err
		}
		end, err := parseRangeEnd(filter.EndDate, u.location)
		if err != nil {
			return nil, err
		}
		domainFilter.StartDate = &start
		domainFilter.EndDate = &end
	}

	return domainFilter, nil
}
