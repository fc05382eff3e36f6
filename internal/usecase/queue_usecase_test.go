package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/pkg/apperror"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQueueEntry_NumbersPerDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Walk In")

	first, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, first.QueueNumber)
	assert.Equal(t, "2026-03-01", first.QueueDate)
	assert.Equal(t, string(entity.QueueStatusWaiting), first.Status)
	assert.Equal(t, string(entity.QueuePriorityNormal), first.Priority)
	require.NotNil(t, first.Patient)
	assert.Equal(t, "Walk In", first.Patient.Name)

	second, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 2, second.QueueNumber)

	// next calendar day starts over
	env.now = env.now.AddDate(0, 0, 1)
	third, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, third.QueueNumber)
	assert.Equal(t, "2026-03-02", third.QueueDate)

	assert.Equal(t, float64(3), testutil.ToFloat64(env.metrics.QueueEntriesCreated.WithLabelValues("normal")))
}

func TestCreateQueueEntry_ConcurrentRequestsGetDistinctNumbers(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Busy Day")

	const n = 8
	numbers := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := env.queue.CreateQueueEntry(context.Background(), &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
			if assert.NoError(t, err) {
				numbers <- entry.QueueNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for number := range numbers {
		assert.False(t, seen[number], "duplicate number %d", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "missing number %d", i)
	}
}

func TestCreateQueueEntry_UnknownPatientOrDoctor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	patient := env.createPatient(t, "Known")
	missingDoctor := uuid.New()
	_, err = env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{
		PatientID: patient.ID.String(),
		DoctorID:  missingDoctor.String(),
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Equal(t, "Doctor with ID "+missingDoctor.String()+" not found", apperror.MessageOf(err))

	// a failed attempt does not consume a number
	entry, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.QueueNumber)
}

func TestGetTodayQueue_UrgentFirstThenNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Queue Patient")

	create := func(priority string) {
		_, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String(), Priority: priority})
		require.NoError(t, err)
	}
	create("normal") // 1
	create("urgent") // 2
	create("normal") // 3

	// yesterday's entries are not part of today
	env.now = env.now.AddDate(0, 0, -1)
	create("urgent")
	env.now = env.now.AddDate(0, 0, 1)

	today, err := env.queue.GetTodayQueue(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, today.Total)

	var order []int
	for _, e := range today.Entries {
		order = append(order, e.QueueNumber)
	}
	assert.Equal(t, []int{2, 1, 3}, order)

	all, err := env.queue.GetAllQueueEntries(ctx, &dto.QueueFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
	assert.Equal(t, "urgent", all.Entries[0].Priority)
	assert.Equal(t, "urgent", all.Entries[1].Priority)
}

func TestGetAllQueueEntries_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Filter Patient")
	doctor := env.createDoctor(t, "Dr. Filter", "General", "Room 1")

	_, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String(), DoctorID: doctor.ID.String()})
	require.NoError(t, err)
	second, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String(), Priority: "urgent"})
	require.NoError(t, err)
	_, err = env.queue.SetStatus(ctx, second.ID, entity.QueueStatusWithDoctor)
	require.NoError(t, err)

	byDoctor, err := env.queue.GetAllQueueEntries(ctx, &dto.QueueFilterRequest{DoctorID: doctor.ID.String()})
	require.NoError(t, err)
	require.Equal(t, 1, byDoctor.Total)
	require.NotNil(t, byDoctor.Entries[0].Doctor)
	assert.Equal(t, "Dr. Filter", byDoctor.Entries[0].Doctor.Name)

	byStatus, err := env.queue.GetAllQueueEntries(ctx, &dto.QueueFilterRequest{Status: "with-doctor"})
	require.NoError(t, err)
	require.Equal(t, 1, byStatus.Total)
	assert.Equal(t, second.ID, byStatus.Entries[0].ID)

	byPriority, err := env.queue.GetAllQueueEntries(ctx, &dto.QueueFilterRequest{Priority: "normal"})
	require.NoError(t, err)
	assert.Equal(t, 1, byPriority.Total)

	_, err = env.queue.GetAllQueueEntries(ctx, &dto.QueueFilterRequest{Status: "asleep"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestQueueSetStatus_AnyTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Status Patient")

	entry, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
	require.NoError(t, err)

	longAgo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Model(&entity.QueueEntry{}).Where("id = ?", entry.ID).UpdateColumn("updated_at", longAgo).Error)

	completed, err := env.queue.SetStatus(ctx, entry.ID, entity.QueueStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	assert.True(t, completed.UpdatedAt.After(longAgo), "response carries the refreshed updated_at")

	// completed back to waiting is allowed
	waiting, err := env.queue.SetStatus(ctx, entry.ID, entity.QueueStatusWaiting)
	require.NoError(t, err)
	assert.Equal(t, "waiting", waiting.Status)

	stored, err := env.queue.GetQueueEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "waiting", stored.Status)
	assert.Equal(t, entry.QueueNumber, stored.QueueNumber)

	_, err = env.queue.SetStatus(ctx, uuid.New(), entity.QueueStatusCompleted)
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)

	_, err = env.queue.SetStatus(ctx, entry.ID, entity.QueueStatus("lost"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateQueueEntry_MergesAndRevalidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Merge Patient")
	doctor := env.createDoctor(t, "Dr. Merge", "General", "Room 2")

	entry, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String(), Notes: "fever"})
	require.NoError(t, err)

	_, err = env.queue.UpdateQueueEntry(ctx, entry.ID, &dto.UpdateQueueEntryRequest{DoctorID: strPtr(uuid.NewString())})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	updated, err := env.queue.UpdateQueueEntry(ctx, entry.ID, &dto.UpdateQueueEntryRequest{
		DoctorID: strPtr(doctor.ID.String()),
		Priority: strPtr("urgent"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DoctorID)
	assert.Equal(t, doctor.ID, *updated.DoctorID)
	assert.Equal(t, "urgent", updated.Priority)
	assert.Equal(t, "fever", updated.Notes)
	assert.Equal(t, entry.QueueNumber, updated.QueueNumber)

	cleared, err := env.queue.UpdateQueueEntry(ctx, entry.ID, &dto.UpdateQueueEntryRequest{DoctorID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.DoctorID)
	assert.Nil(t, cleared.Doctor)

	_, err = env.queue.UpdateQueueEntry(ctx, uuid.New(), &dto.UpdateQueueEntryRequest{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)
}

func TestDeleteQueueEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "Delete Patient")

	entry, err := env.queue.CreateQueueEntry(ctx, &dto.CreateQueueEntryRequest{PatientID: patient.ID.String()})
	require.NoError(t, err)

	require.NoError(t, env.queue.DeleteQueueEntry(ctx, entry.ID))

	_, err = env.queue.GetQueueEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)

	err = env.queue.DeleteQueueEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
