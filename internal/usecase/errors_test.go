package usecase

import (
	"errors"
	"testing"
	"time"

	"clinic-front-desk/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFound_CarriesIDAndSentinel(t *testing.T) {
	err := notFound(ErrDoctorNotFound, "Doctor", "abc")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "Doctor with ID abc not found", apperror.MessageOf(err))
}

func TestIsDuplicateKeyError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}
	assert.True(t, isDuplicateKeyError(pgErr, "username"))
	assert.False(t, isDuplicateKeyError(pgErr, "queue"))

	sqliteErr := errors.New("UNIQUE constraint failed: users.username (2067)")
	assert.True(t, isDuplicateKeyError(sqliteErr, "username"))
	assert.False(t, isDuplicateKeyError(sqliteErr, "queue"))
	assert.False(t, isDuplicateKeyError(errors.New("boom"), "username"))
}

func TestIsForeignKeyError(t *testing.T) {
	assert.True(t, isForeignKeyError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isForeignKeyError(errors.New("FOREIGN KEY constraint failed (787)")))
	assert.False(t, isForeignKeyError(&pgconn.PgError{Code: "23505"}))
}

func TestParseDateTime(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)

	got, err := parseDateTime("2026-05-01T09:30:00+02:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC), got)

	// bare dates are local midnight, returned in UTC
	got, err = parseDateTime("2026-05-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 30, 17, 0, 0, 0, time.UTC), got)
	assert.True(t, got.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, loc)))

	_, err = parseDateTime("01/05/2026", loc)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseRangeEnd_CoversWholeDay(t *testing.T) {
	got, err := parseRangeEnd("2026-05-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 23, 59, 59, 999999999, time.UTC), got)

	got, err = parseRangeEnd("2026-05-01T10:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	got, err = parseRangeEnd("2026-05-01", time.FixedZone("UTC+7", 7*3600))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 16, 59, 59, 999999999, time.UTC), got)
}

func TestParseOptionalID(t *testing.T) {
	id, err := parseOptionalID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = parseOptionalID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}
