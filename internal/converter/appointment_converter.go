package converter

import (
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
)

// AppointmentToResponse includes Doctor and Patient when they are loaded
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		AppointmentDate: appointment.AppointmentDate,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		Doctor:          DoctorToResponse(appointment.Doctor),
		Patient:         PatientToResponse(appointment.Patient),
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
