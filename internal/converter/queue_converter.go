package converter

import (
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
)

func QueueEntryToResponse(entry *entity.QueueEntry) *dto.QueueEntryResponse {
	if entry == nil {
		return nil
	}

	return &dto.QueueEntryResponse{
		ID:          entry.ID,
		QueueNumber: entry.QueueNumber,
		QueueDate:   entry.QueueDate,
		Status:      string(entry.Status),
		Priority:    string(entry.Priority),
		Notes:       entry.Notes,
		PatientID:   entry.PatientID,
		DoctorID:    entry.DoctorID,
		Patient:     PatientToResponse(entry.Patient),
		Doctor:      DoctorToResponse(entry.Doctor),
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}

func QueueEntriesToResponses(entries []entity.QueueEntry) []dto.QueueEntryResponse {
	responses := make([]dto.QueueEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *QueueEntryToResponse(&entries[i])
	}
	return responses
}
