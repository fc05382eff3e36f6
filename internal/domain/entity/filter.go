package entity

import (
	"time"

	"github.com/google/uuid"
)

// Filters are domain-level query inputs used by the repository layer
// so it stays decoupled from delivery DTOs. Zero values mean "not filtered".

type DoctorFilter struct {
	Specialization string
	Location       string
	IsAvailable    *bool
}

type PatientFilter struct {
	Name  string // substring, case-insensitive
	Phone string
	Email string
}

type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    AppointmentStatus
	// Range is applied only when both bounds are set
	StartDate *time.Time
	EndDate   *time.Time
}

type QueueFilter struct {
	Status    QueueStatus
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Priority  QueuePriority
	QueueDate string
}

type AuditLogFilter struct {
	UserID *uuid.UUID
	Action string
	// Entity matches the action prefix: "doctor" selects doctor.create, doctor.update, ...
	Entity string
	Limit  int
	Offset int
}
