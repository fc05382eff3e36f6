package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateQueueEntryRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	DoctorID  string `json:"doctor_id" validate:"omitempty,uuid"`
	Priority  string `json:"priority" validate:"omitempty,oneof=normal urgent"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateQueueEntryRequest struct {
	PatientID *string `json:"patient_id" validate:"omitempty,uuid"`
	DoctorID  *string `json:"doctor_id" validate:"omitempty,uuid"`
	Priority  *string `json:"priority" validate:"omitempty,oneof=normal urgent"`
	Status    *string `json:"status" validate:"omitempty,oneof=waiting with_doctor completed canceled"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

type QueueFilterRequest struct {
	Status    string // parsed by entity.ParseQueueStatus, which also takes with-doctor
	DoctorID  string `validate:"omitempty,uuid"`
	PatientID string `validate:"omitempty,uuid"`
	Priority  string `validate:"omitempty,oneof=normal urgent"`
	Date      string `validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs

type QueueEntryResponse struct {
	ID          uuid.UUID        `json:"id"`
	QueueNumber int              `json:"queue_number"`
	QueueDate   string           `json:"queue_date"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	Notes       string           `json:"notes,omitempty"`
	PatientID   uuid.UUID        `json:"patient_id"`
	DoctorID    *uuid.UUID       `json:"doctor_id,omitempty"`
	Patient     *PatientResponse `json:"patient,omitempty"`
	Doctor      *DoctorResponse  `json:"doctor,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type QueueListResponse struct {
	Entries []QueueEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
}
