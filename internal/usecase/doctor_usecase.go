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

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, filter *dto.DoctorFilterRequest) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type doctorUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	queueRepo       repository.QueueEntryRepository
	auditService    service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	queueRepo repository.QueueEntryRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		queueRepo:       queueRepo,
		auditService:    auditService,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	gender := entity.Gender(req.Gender)
	if !gender.IsValid() {
		return nil, ErrInvalidGender
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor := &entity.Doctor{
		Name:           req.Name,
		Specialization: req.Specialization,
		Gender:         gender,
		Location:       req.Location,
		IsAvailable:    &isAvailable,
	}
	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionDoctorCreate, "doctor", doctor.ID.String(), converter.DoctorToResponse(doctor)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, notFound(ErrDoctorNotFound, "Doctor", doctorID)
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context, filter *dto.DoctorFilterRequest) (*dto.DoctorListResponse, error) {
	var domainFilter *entity.DoctorFilter
	if filter != nil {
		domainFilter = &entity.DoctorFilter{
			Specialization: filter.Specialization,
			Location:       filter.Location,
			IsAvailable:    filter.IsAvailable,
		}
	}

	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx), domainFilter)
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	responses := converter.DoctorsToResponses(doctors)

	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, notFound(ErrDoctorNotFound, "Doctor", doctorID)
	}

	oldValue := converter.DoctorToResponse(doctor)

	// Merge supplied fields
	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Gender != nil {
		gender := entity.Gender(*req.Gender)
		if !gender.IsValid() {
			return nil, ErrInvalidGender
		}
		doctor.Gender = gender
	}
	if req.Location != nil {
		doctor.Location = *req.Location
	}
	if req.IsAvailable != nil {
		isAvailable := *req.IsAvailable
		doctor.IsAvailable = &isAvailable
	}

	if err := u.doctorRepo.Update(tx, doctor); err != nil {
		u.log.Warnf("Failed to update doctor: %+v", err)
		return nil, err
	}

	newValue := converter.DoctorToResponse(doctor)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionDoctorUpdate, "doctor", doctor.ID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// DeleteDoctor refuses to remove a doctor that appointments or queue entries still point at
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return err
	}
	if doctor == nil {
		return notFound(ErrDoctorNotFound, "Doctor", doctorID)
	}

	appointments, err := u.appointmentRepo.Count(tx, &entity.AppointmentFilter{DoctorID: &doctorID})
	if err != nil {
		u.log.Warnf("Failed to count doctor appointments: %+v", err)
		return err
	}
	entries, err := u.queueRepo.Count(tx, &entity.QueueFilter{DoctorID: &doctorID})
	if err != nil {
		u.log.Warnf("Failed to count doctor queue entries: %+v", err)
		return err
	}
	if appointments > 0 || entries > 0 {
		return ErrDoctorInUse
	}

	rows, err := u.doctorRepo.Delete(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor: %+v", err)
		if isForeignKeyError(err) {
			return ErrDoctorInUse
		}
		return err
	}
	if rows == 0 {
		return notFound(ErrDoctorNotFound, "Doctor", doctorID)
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionDoctorDelete, "doctor", doctorID.String(), converter.DoctorToResponse(doctor)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
