package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest accepts appointment_date as RFC3339 or YYYY-MM-DD
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	PatientID       string `json:"patient_id" validate:"required,uuid"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateAppointmentRequest struct {
	DoctorID        *string `json:"doctor_id" validate:"omitempty,uuid"`
	PatientID       *string `json:"patient_id" validate:"omitempty,uuid"`
	AppointmentDate *string `json:"appointment_date"`
	Status          *string `json:"status" validate:"omitempty,oneof=booked completed canceled"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

type AppointmentFilterRequest struct {
	DoctorID  string `validate:"omitempty,uuid"`
	PatientID string `validate:"omitempty,uuid"`
	Status    string `validate:"omitempty,oneof=booked completed canceled"`
	StartDate string
	EndDate   string
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID        `json:"id"`
	AppointmentDate time.Time        `json:"appointment_date"`
	Status          string           `json:"status"`
	Notes           string           `json:"notes,omitempty"`
	DoctorID        uuid.UUID        `json:"doctor_id"`
	PatientID       uuid.UUID        `json:"patient_id"`
	Doctor          *DoctorResponse  `json:"doctor,omitempty"`
	Patient         *PatientResponse `json:"patient,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
