package handler

import (
	"net/http"

	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/usecase"
	"clinic-front-desk/pkg/response"
	"clinic-front-desk/pkg/validator"

	"github.com/gorilla/mux"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
	validator    *validator.CustomValidator
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase, validator *validator.CustomValidator) *QueueHandler {
	return &QueueHandler{
		queueUsecase: queueUsecase,
		validator:    validator,
	}
}

func (h *QueueHandler) CreateQueueEntry(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateQueueEntryRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	entry, err := h.queueUsecase.CreateQueueEntry(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create queue entry")
		return
	}

	response.Success(w, http.StatusCreated, "Queue entry created successfully", entry)
}

func (h *QueueHandler) GetQueueEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "queue entry")
	if !ok {
		return
	}

	entry, err := h.queueUsecase.GetQueueEntry(r.Context(), entryID)
	if err != nil {
		writeError(w, err, "Failed to get queue entry")
		return
	}

	response.Success(w, http.StatusOK, "Queue entry retrieved successfully", entry)
}

func (h *QueueHandler) GetAllQueueEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := dto.QueueFilterRequest{
		Status:    query.Get("status"),
		DoctorID:  query.Get("doctor_id"),
		PatientID: query.Get("patient_id"),
		Priority:  query.Get("priority"),
		Date:      query.Get("date"),
	}
	if err := h.validator.Validate(&filter); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entries, err := h.queueUsecase.GetAllQueueEntries(r.Context(), &filter)
	if err != nil {
		writeError(w, err, "Failed to get queue entries")
		return
	}

	response.Success(w, http.StatusOK, "Queue entries retrieved successfully", entries)
}

func (h *QueueHandler) GetTodayQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queueUsecase.GetTodayQueue(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get today's queue")
		return
	}

	response.Success(w, http.StatusOK, "Today's queue retrieved successfully", entries)
}

func (h *QueueHandler) UpdateQueueEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "queue entry")
	if !ok {
		return
	}

	var req dto.UpdateQueueEntryRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	entry, err := h.queueUsecase.UpdateQueueEntry(r.Context(), entryID, &req)
	if err != nil {
		writeError(w, err, "Failed to update queue entry")
		return
	}

	response.Success(w, http.StatusOK, "Queue entry updated successfully", entry)
}

// SetStatus serves PATCH /queue/{id}/status/{status}
func (h *QueueHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "queue entry")
	if !ok {
		return
	}

	status, ok := entity.ParseQueueStatus(mux.Vars(r)["status"])
	if !ok {
		response.BadRequest(w, "Invalid queue status")
		return
	}

	entry, err := h.queueUsecase.SetStatus(r.Context(), entryID, status)
	if err != nil {
		writeError(w, err, "Failed to update queue status")
		return
	}

	response.Success(w, http.StatusOK, "Queue status updated successfully", entry)
}

func (h *QueueHandler) DeleteQueueEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "queue entry")
	if !ok {
		return
	}

	if err := h.queueUsecase.DeleteQueueEntry(r.Context(), entryID); err != nil {
		writeError(w, err, "Failed to delete queue entry")
		return
	}

	response.Success(w, http.StatusOK, "Queue entry deleted successfully", nil)
}
