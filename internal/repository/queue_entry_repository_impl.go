package repository

import (
	"errors"

	"clinic-front-desk/internal/domain/entity"
	domainRepo "clinic-front-desk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// urgent before normal regardless of how the values sort as text
const queueOrderPriority = "CASE WHEN queue_entries.priority = 'urgent' THEN 0 ELSE 1 END"

type queueEntryRepository struct{}

func NewQueueEntryRepository() domainRepo.QueueEntryRepository {
	return &queueEntryRepository{}
}

func (r *queueEntryRepository) Create(db *gorm.DB, entry *entity.QueueEntry) error {
	return db.Omit(clause.Associations).Create(entry).Error
}

func (r *queueEntryRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	err := db.Preload("Patient").Preload("Doctor").Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *queueEntryRepository) FindAll(db *gorm.DB, filter *entity.QueueFilter) ([]entity.QueueEntry, error) {
	var entries []entity.QueueEntry
	err := applyQueueFilter(db, filter).
		Preload("Patient").Preload("Doctor").
		Order(queueOrderPriority).
		Order("queue_entries.queue_number ASC").
		Order("queue_entries.created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *queueEntryRepository) Count(db *gorm.DB, filter *entity.QueueFilter) (int64, error) {
	var total int64
	err := applyQueueFilter(db.Model(&entity.QueueEntry{}), filter).Count(&total).Error
	return total, err
}

// MaxQueueNumber returns the highest number handed out on queueDate, 0 if none
func (r *queueEntryRepository) MaxQueueNumber(db *gorm.DB, queueDate string) (int, error) {
	var max int
	err := db.Model(&entity.QueueEntry{}).
		Select("COALESCE(MAX(queue_number), 0)").
		Where("queue_date = ?", queueDate).
		Scan(&max).Error
	return max, err
}

func (r *queueEntryRepository) Update(db *gorm.DB, entry *entity.QueueEntry) error {
	return db.Omit(clause.Associations).Save(entry).Error
}

func (r *queueEntryRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.QueueStatus) (int64, error) {
	result := db.Model(&entity.QueueEntry{}).Where("id = ?", id).Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *queueEntryRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.QueueEntry{})
	return result.RowsAffected, result.Error
}

func applyQueueFilter(query *gorm.DB, filter *entity.QueueFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != "" {
		query = query.Where("queue_entries.status = ?", filter.Status)
	}
	if filter.DoctorID != nil {
		query = query.Where("queue_entries.doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("queue_entries.patient_id = ?", *filter.PatientID)
	}
	if filter.Priority != "" {
		query = query.Where("queue_entries.priority = ?", filter.Priority)
	}
	if filter.QueueDate != "" {
		query = query.Where("queue_entries.queue_date = ?", filter.QueueDate)
	}
	return query
}
