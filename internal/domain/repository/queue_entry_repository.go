package repository

import (
	"clinic-front-desk/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueueEntryRepository interface {
	Create(db *gorm.DB, entry *entity.QueueEntry) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.QueueEntry, error)
	// FindAll returns entries urgent first, then by queue number
	FindAll(db *gorm.DB, filter *entity.QueueFilter) ([]entity.QueueEntry, error)
	Count(db *gorm.DB, filter *entity.QueueFilter) (int64, error)
	MaxQueueNumber(db *gorm.DB, queueDate string) (int, error)
	Update(db *gorm.DB, entry *entity.QueueEntry) error
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.QueueStatus) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
