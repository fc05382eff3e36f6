package usecase

import (
	"errors"
	"strings"
	"time"

	"clinic-front-desk/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDoctorNotFound      = apperror.New(apperror.KindNotFound, "doctor not found")
	ErrPatientNotFound     = apperror.New(apperror.KindNotFound, "patient not found")
	ErrAppointmentNotFound = apperror.New(apperror.KindNotFound, "appointment not found")
	ErrQueueEntryNotFound  = apperror.New(apperror.KindNotFound, "queue entry not found")
	ErrUserNotFound        = apperror.New(apperror.KindNotFound, "user not found")
	ErrAuditLogNotFound    = apperror.New(apperror.KindNotFound, "audit log not found")

	ErrInvalidCredentials = apperror.Unauthorized("invalid username or password")
	ErrUsernameTaken      = apperror.Unauthorized("username already exists")
	ErrUsernameConflict   = apperror.Conflict("username already exists")

	ErrDoctorInUse      = apperror.Conflict("doctor still has appointments or queue entries")
	ErrPatientInUse     = apperror.Conflict("patient still has appointments or queue entries")
	ErrQueueNumberTaken = apperror.Conflict("queue number was taken concurrently, please retry")

	ErrInvalidID        = apperror.BadRequest("invalid id")
	ErrInvalidStatus    = apperror.BadRequest("invalid status")
	ErrInvalidPriority  = apperror.BadRequest("invalid priority")
	ErrInvalidRole      = apperror.BadRequest("invalid role")
	ErrInvalidGender    = apperror.BadRequest("invalid gender")
	ErrInvalidDate      = apperror.BadRequest("invalid date, use YYYY-MM-DD or RFC3339")
	ErrCannotDeleteSelf = apperror.BadRequest("you cannot delete your own account")
)

// notFound names the missing record, keeping sentinel for errors.Is
func notFound(sentinel error, entityName string, id interface{}) error {
	return apperror.NotFound(entityName, id).WithCause(sentinel)
}

// isDuplicateKeyError checks if the error is a unique violation whose
// constraint (or, on SQLite, message) mentions the given name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, strings.ToLower(constraintName))
}

// isForeignKeyError checks if the error is a foreign key violation
func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

const dateLayout = "2006-01-02"

// parseDateTime accepts RFC3339 or a bare date, which means midnight in loc.
// Results are UTC so stored values and range bounds share one offset.
func parseDateTime(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

// parseRangeEnd is parseDateTime, except a bare date covers the whole day
func parseRangeEnd(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond).UTC(), nil
	}
	return parseDateTime(raw, loc)
}

func parseBirthDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
