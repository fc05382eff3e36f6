package usecase

import (
	"context"

	"clinic-front-desk/internal/converter"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"
	"clinic-front-desk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PatientUsecase interface {
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, patientID uuid.UUID) (*dto.PatientResponse, error)
	GetAllPatients(ctx context.Context, filter *dto.PatientFilterRequest) (*dto.PatientListResponse, error)
	UpdatePatient(ctx context.Context, patientID uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, patientID uuid.UUID) error
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	queueRepo       repository.QueueEntryRepository
	auditService    service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	queueRepo repository.QueueEntryRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		queueRepo:       queueRepo,
		auditService:    auditService,
	}
}

func (u *patientUsecase) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	gender := entity.Gender(req.Gender)
	if !gender.IsValid() {
		return nil, ErrInvalidGender
	}
	dateOfBirth, err := parseBirthDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient := &entity.Patient{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Gender:      gender,
		DateOfBirth: dateOfBirth,
		Address:     req.Address,
	}
	if err := u.patientRepo.Create(tx, patient); err != nil {
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionPatientCreate, "patient", patient.ID.String(), converter.PatientToResponse(patient)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, patientID uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, notFound(ErrPatientNotFound, "Patient", patientID)
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetAllPatients(ctx context.Context, filter *dto.PatientFilterRequest) (*dto.PatientListResponse, error) {
	var domainFilter *entity.PatientFilter
	if filter != nil {
		domainFilter = &entity.PatientFilter{
			Name:  filter.Name,
			Phone: filter.Phone,
			Email: filter.Email,
		}
	}

	patients, err := u.patientRepo.FindAll(u.db.WithContext(ctx), domainFilter)
	if err != nil {
		u.log.Warnf("Failed to find all patients: %+v", err)
		return nil, err
	}

	responses := converter.PatientsToResponses(patients)

	return &dto.PatientListResponse{
		Patients: responses,
		Total:    len(responses),
	}, nil
}

func (u *patientUsecase) UpdatePatient(ctx context.Context, patientID uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, notFound(ErrPatientNotFound, "Patient", patientID)
	}

	oldValue := converter.PatientToResponse(patient)

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Gender != nil {
		gender := entity.Gender(*req.Gender)
		if !gender.IsValid() {
			return nil, ErrInvalidGender
		}
		patient.Gender = gender
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.DateOfBirth != nil {
		dateOfBirth, err := parseBirthDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		patient.DateOfBirth = dateOfBirth
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}

	if err := u.patientRepo.Update(tx, patient); err != nil {
		u.log.Warnf("Failed to update patient: %+v", err)
		return nil, err
	}

	newValue := converter.PatientToResponse(patient)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionPatientUpdate, "patient", patient.ID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

func (u *patientUsecase) DeletePatient(ctx context.Context, patientID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return err
	}
	if patient == nil {
		return notFound(ErrPatientNotFound, "Patient", patientID)
	}

	appointments, err := u.appointmentRepo.Count(tx, &entity.AppointmentFilter{PatientID: &patientID})
	if err != nil {
		u.log.Warnf("Failed to count patient appointments: %+v", err)
		return err
	}
	entries, err := u.queueRepo.Count(tx, &entity.QueueFilter{PatientID: &patientID})
	if err != nil {
		u.log.Warnf("Failed to count patient queue entries: %+v", err)
		return err
	}
	if appointments > 0 || entries > 0 {
		return ErrPatientInUse
	}

	rows, err := u.patientRepo.Delete(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to delete patient: %+v", err)
		if isForeignKeyError(err) {
			return ErrPatientInUse
		}
		return err
	}
	if rows == 0 {
		return notFound(ErrPatientNotFound, "Patient", patientID)
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionPatientDelete, "patient", patientID.String(), converter.PatientToResponse(patient)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
