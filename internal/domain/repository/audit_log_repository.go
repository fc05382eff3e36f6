package repository

import (
	"clinic-front-desk/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error)
	Count(db *gorm.DB, filter *entity.AuditLogFilter) (int64, error)
	FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error)
}
