package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueStatus represents where a walk-in currently is
type QueueStatus string

const (
	QueueStatusWaiting    QueueStatus = "waiting"
	QueueStatusWithDoctor QueueStatus = "with_doctor"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusCanceled   QueueStatus = "canceled"
)

// IsValid reports whether s is one of the known queue statuses
func (s QueueStatus) IsValid() bool {
	switch s {
	case QueueStatusWaiting, QueueStatusWithDoctor, QueueStatusCompleted, QueueStatusCanceled:
		return true
	}
	return false
}

// ParseQueueStatus accepts both "with_doctor" and the URL form "with-doctor"
func ParseQueueStatus(raw string) (QueueStatus, bool) {
	status := QueueStatus(strings.ReplaceAll(strings.ToLower(raw), "-", "_"))
	return status, status.IsValid()
}

// QueuePriority orders the queue; urgent entries are served first
type QueuePriority string

const (
	QueuePriorityNormal QueuePriority = "normal"
	QueuePriorityUrgent QueuePriority = "urgent"
)

func (p QueuePriority) IsValid() bool {
	return p == QueuePriorityNormal || p == QueuePriorityUrgent
}

// QueueDateLayout is the layout of QueueEntry.QueueDate
const QueueDateLayout = "2006-01-02"

// QueueEntry is a walk-in patient waiting at the front desk.
// QueueNumber is unique within QueueDate, the clinic-local day the entry was created.
type QueueEntry struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	QueueNumber int           `gorm:"not null;uniqueIndex:idx_queue_entries_day_number,priority:2" json:"queue_number"`
	QueueDate   string        `gorm:"type:varchar(10);not null;uniqueIndex:idx_queue_entries_day_number,priority:1" json:"queue_date"`
	Status      QueueStatus   `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	Priority    QueuePriority `gorm:"type:varchar(10);not null;default:'normal';index" json:"priority"`
	PatientID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    *uuid.UUID    `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}

func (q *QueueEntry) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
