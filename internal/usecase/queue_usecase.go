package usecase

import (
	"context"

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

type QueueUsecase interface {
	CreateQueueEntry(ctx context.Context, req *dto.CreateQueueEntryRequest) (*dto.QueueEntryResponse, error)
	GetQueueEntry(ctx context.Context, entryID uuid.UUID) (*dto.QueueEntryResponse, error)
	GetAllQueueEntries(ctx context.Context, filter *dto.QueueFilterRequest) (*dto.QueueListResponse, error)
	GetTodayQueue(ctx context.Context) (*dto.QueueListResponse, error)
	UpdateQueueEntry(ctx context.Context, entryID uuid.UUID, req *dto.UpdateQueueEntryRequest) (*dto.QueueEntryResponse, error)
	SetStatus(ctx context.Context, entryID uuid.UUID, status entity.QueueStatus) (*dto.QueueEntryResponse, error)
	DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) error
}

type queueUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	queueRepo    repository.QueueEntryRepository
	doctorRepo   repository.DoctorRepository
	patientRepo  repository.PatientRepository
	sequencer    *service.QueueSequencer
	auditService service.AuditService
	metrics      *metrics.Metrics
}

func NewQueueUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	queueRepo repository.QueueEntryRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	sequencer *service.QueueSequencer,
	auditService service.AuditService,
	m *metrics.Metrics,
) QueueUsecase {
	return &queueUsecase{
		db:           db,
		log:          log,
		queueRepo:    queueRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		sequencer:    sequencer,
		auditService: auditService,
		metrics:      m,
	}
}

// CreateQueueEntry gives the entry the next number of the current clinic day.
// The day lock is held across the whole transaction so two requests never
// read the same maximum.
func (u *queueUsecase) CreateQueueEntry(ctx context.Context, req *dto.CreateQueueEntryRequest) (*dto.QueueEntryResponse, error) {
	patientID, err := parseID(req.PatientID)
	if err != nil {
		return nil, err
	}
	doctorID, err := parseOptionalID(req.DoctorID)
	if err != nil {
		return nil, err
	}
	priority := entity.QueuePriorityNormal
	if req.Priority != "" {
		priority = entity.QueuePriority(req.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidPriority
		}
	}

	day := u.sequencer.Today()
	unlock := u.sequencer.Lock(day)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requirePatient(tx, patientID); err != nil {
		return nil, err
	}
	if doctorID != nil {
		if err := u.requireDoctor(tx, *doctorID); err != nil {
			return nil, err
		}
	}

	number, err := u.sequencer.Next(ctx, tx, day)
	if err != nil {
		return nil, err
	}

	entry := &entity.QueueEntry{
		QueueNumber: number,
		QueueDate:   day,
		Status:      entity.QueueStatusWaiting,
		Priority:    priority,
		PatientID:   patientID,
		DoctorID:    doctorID,
		Notes:       req.Notes,
	}
	if err := u.queueRepo.Create(tx, entry); err != nil {
		u.log.Warnf("Failed to create queue entry: %+v", err)
		if isDuplicateKeyError(err, "queue") {
			return nil, ErrQueueNumberTaken
		}
		return nil, err
	}

	created, err := u.queueRepo.FindByID(tx, entry.ID)
	if err != nil {
		u.log.Warnf("Failed to reload queue entry: %+v", err)
		return nil, err
	}

	response := converter.QueueEntryToResponse(created)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionQueueCreate, "queue_entry", entry.ID.String(), response); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		if isDuplicateKeyError(err, "queue") {
			return nil, ErrQueueNumberTaken
		}
		return nil, err
	}

	if u.metrics != nil {
		u.metrics.QueueEntriesCreated.WithLabelValues(string(priority)).Inc()
	}

	return response, nil
}

func (u *queueUsecase) GetQueueEntry(ctx context.Context, entryID uuid.UUID) (*dto.QueueEntryResponse, error) {
	entry, err := u.queueRepo.FindByID(u.db.WithContext(ctx), entryID)
	if err != nil {
		u.log.Warnf("Failed to find queue entry: %+v", err)
		return nil, err
	}
	if entry == nil {
		return nil, notFound(ErrQueueEntryNotFound, "Queue entry", entryID)
	}

	return converter.QueueEntryToResponse(entry), nil
}

func (u *queueUsecase) GetAllQueueEntries(ctx context.Context, filter *dto.QueueFilterRequest) (*dto.QueueListResponse, error) {
	domainFilter, err := toQueueFilter(filter)
	if err != nil {
		return nil, err
	}
	return u.list(ctx, domainFilter)
}

// GetTodayQueue lists the current clinic day, urgent first then by number
func (u *queueUsecase) GetTodayQueue(ctx context.Context) (*dto.QueueListResponse, error) {
	return u.list(ctx, &entity.QueueFilter{QueueDate: u.sequencer.Today()})
}

func (u *queueUsecase) list(ctx context.Context, filter *entity.QueueFilter) (*dto.QueueListResponse, error) {
	entries, err := u.queueRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find queue entries: %+v", err)
		return nil, err
	}

	responses := converter.QueueEntriesToResponses(entries)

	return &dto.QueueListResponse{
		Entries: responses,
		Total:   len(responses),
	}, nil
}

// UpdateQueueEntry merges the supplied fields; an empty doctor_id unassigns the doctor.
// Queue number and day never change.
func (u *queueUsecase) UpdateQueueEntry(ctx context.Context, entryID uuid.UUID, req *dto.UpdateQueueEntryRequest) (*dto.QueueEntryResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	entry, err := u.queueRepo.FindByID(tx, entryID)
	if err != nil {
		u.log.Warnf("Failed to find queue entry: %+v", err)
		return nil, err
	}
	if entry == nil {
		return nil, notFound(ErrQueueEntryNotFound, "Queue entry", entryID)
	}

	oldValue := converter.QueueEntryToResponse(entry)

	if req.PatientID != nil {
		patientID, err := parseID(*req.PatientID)
		if err != nil {
			return nil, err
		}
		if err := u.requirePatient(tx, patientID); err != nil {
			return nil, err
		}
		entry.PatientID = patientID
	}
	if req.DoctorID != nil {
		doctorID, err := parseOptionalID(*req.DoctorID)
		if err != nil {
			return nil, err
		}
		if doctorID != nil {
			if err := u.requireDoctor(tx, *doctorID); err != nil {
				return nil, err
			}
		}
		entry.DoctorID = doctorID
	}
	if req.Priority != nil {
		priority := entity.QueuePriority(*req.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		entry.Priority = priority
	}
	if req.Status != nil {
		status, ok := entity.ParseQueueStatus(*req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		entry.Status = status
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := u.queueRepo.Update(tx, entry); err != nil {
		u.log.Warnf("Failed to update queue entry: %+v", err)
		return nil, err
	}

	updated, err := u.queueRepo.FindByID(tx, entryID)
	if err != nil {
		u.log.Warnf("Failed to reload queue entry: %+v", err)
		return nil, err
	}

	newValue := converter.QueueEntryToResponse(updated)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionQueueUpdate, "queue_entry", entryID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// SetStatus overwrites the status; any status may follow any other
func (u *queueUsecase) SetStatus(ctx context.Context, entryID uuid.UUID, status entity.QueueStatus) (*dto.QueueEntryResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	entry, err := u.queueRepo.FindByID(tx, entryID)
	if err != nil {
		u.log.Warnf("Failed to find queue entry: %+v", err)
		return nil, err
	}
	if entry == nil {
		return nil, notFound(ErrQueueEntryNotFound, "Queue entry", entryID)
	}

	oldStatus := entry.Status
	if _, err := u.queueRepo.UpdateStatus(tx, entryID, status); err != nil {
		u.log.Warnf("Failed to update queue status: %+v", err)
		return nil, err
	}

	updated, err := u.queueRepo.FindByID(tx, entryID)
	if err != nil {
		u.log.Warnf("Failed to reload queue entry: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionQueueStatus, "queue_entry", entryID.String(),
		map[string]interface{}{"status": oldStatus}, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if u.metrics != nil {
		u.metrics.StatusTransitions.WithLabelValues("queue_entry", string(status)).Inc()
	}

	return converter.QueueEntryToResponse(updated), nil
}

func (u *queueUsecase) DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	entry, err := u.queueRepo.FindByID(tx, entryID)
	if err != nil {
		u.log.Warnf("Failed to find queue entry: %+v", err)
		return err
	}
	if entry == nil {
		return notFound(ErrQueueEntryNotFound, "Queue entry", entryID)
	}

	rows, err := u.queueRepo.Delete(tx, entryID)
	if err != nil {
		u.log.Warnf("Failed to delete queue entry: %+v", err)
		return err
	}
	if rows == 0 {
		return notFound(ErrQueueEntryNotFound, "Queue entry", entryID)
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionQueueDelete, "queue_entry", entryID.String(), converter.QueueEntryToResponse(entry)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *queueUsecase) requireDoctor(tx *gorm.DB, doctorID uuid.UUID) error {
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

func (u *queueUsecase) requirePatient(tx *gorm.DB, patientID uuid.UUID) error {
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

func toQueueFilter(filter *dto.QueueFilterRequest) (*entity.QueueFilter, error) {
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

	domainFilter := &entity.QueueFilter{
		DoctorID:  doctorID,
		PatientID: patientID,
		QueueDate: filter.Date,
	}
	if filter.Status != "" {
		status, ok := entity.ParseQueueStatus(filter.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		domainFilter.Status = status
	}
	if filter.Priority != "" {
		priority := entity.QueuePriority(filter.Priority)
		if !priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		domainFilter.Priority = priority
	}

	return domainFilter, nil
}
