package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Specialization string `json:"specialization" validate:"required,max=100"`
	Gender         string `json:"gender" validate:"required,oneof=male female other"`
	Location       string `json:"location" validate:"required,max=100"`
	IsAvailable    *bool  `json:"is_available"`
}

// UpdateDoctorRequest carries only the fields to change
type UpdateDoctorRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=255"`
	Specialization *string `json:"specialization" validate:"omitempty,min=1,max=100"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=male female other"`
	Location       *string `json:"location" validate:"omitempty,min=1,max=100"`
	IsAvailable    *bool   `json:"is_available"`
}

type DoctorFilterRequest struct {
	Specialization string
	Location       string
	IsAvailable    *bool
}

// Response DTOs

type DoctorResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Gender         string    `json:"gender"`
	Location       string    `json:"location"`
	IsAvailable    bool      `json:"is_available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
