package handler

import (
	"encoding/json"
	"net/http"

	"clinic-front-desk/pkg/apperror"
	"clinic-front-desk/pkg/response"
	"clinic-front-desk/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps an application error to its status code. Errors without a
// kind are answered with fallback so internal details never reach the client.
func writeError(w http.ResponseWriter, err error, fallback string) {
	message := apperror.MessageOf(err)
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		response.NotFound(w, message)
	case apperror.KindUnauthorized:
		response.Unauthorized(w, message)
	case apperror.KindForbidden:
		response.Forbidden(w, message)
	case apperror.KindConflict:
		response.Conflict(w, message)
	case apperror.KindBadRequest:
		response.BadRequest(w, message)
	default:
		response.InternalServerError(w, fallback)
	}
}

// decodeAndValidate reads a JSON body into req and runs the validator.
// It writes the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, entityName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+entityName+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
