package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/repository"
	"clinic-front-desk/internal/testutil"
	"clinic-front-desk/pkg/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQueueEntry(t *testing.T, db *gorm.DB, day string, number int) {
	t.Helper()
	patient := &entity.Patient{Name: "Seed", Gender: entity.GenderOther}
	require.NoError(t, db.Create(patient).Error)
	require.NoError(t, db.Create(&entity.QueueEntry{
		QueueNumber: number,
		QueueDate:   day,
		Status:      entity.QueueStatusWaiting,
		Priority:    entity.QueuePriorityNormal,
		PatientID:   patient.ID,
	}).Error)
}

func newSequencer(t *testing.T, client *redis.Client) *QueueSequencer {
	t.Helper()
	s := NewQueueSequencer(repository.NewQueueEntryRepository(), client, testutil.NewLogger(), metrics.NewMetrics("test"), time.UTC)
	t.Cleanup(s.Stop)
	return s
}

func TestQueueSequencer_Today_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	s := NewQueueSequencer(repository.NewQueueEntryRepository(), nil, testutil.NewLogger(), nil, loc)
	defer s.Stop()

	// 18:30 UTC is already the next day at UTC+7
	s.SetClock(func() time.Time { return time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC) })
	assert.Equal(t, "2026-03-02", s.Today())
	assert.Equal(t, "database", s.Mode())
}

func TestQueueSequencer_Next_Database(t *testing.T) {
	db := testutil.NewDB(t)
	s := newSequencer(t, nil)
	ctx := context.Background()

	n, err := s.Next(ctx, db, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	seedQueueEntry(t, db, "2026-03-01", 1)
	seedQueueEntry(t, db, "2026-03-01", 2)

	n, err = s.Next(ctx, db, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Next(ctx, db, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestQueueSequencer_Next_RedisSeedsFromDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := newSequencer(t, client)
	assert.Equal(t, "redis", s.Mode())
	ctx := context.Background()

	seedQueueEntry(t, db, "2026-03-01", 4)

	n, err := s.Next(ctx, db, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// the counter keeps going even before the entry is written
	n, err = s.Next(ctx, db, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	ttl := mr.TTL(RedisQueueCounterKeyPrefix + "2026-03-01")
	assert.Equal(t, queueCounterTTL, ttl)
}

func TestQueueSequencer_Next_RedisCounterBehindDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := newSequencer(t, client)
	require.NoError(t, mr.Set(RedisQueueCounterKeyPrefix+"2026-03-01", "1"))
	seedQueueEntry(t, db, "2026-03-01", 7)

	n, err := s.Next(context.Background(), db, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestQueueSequencer_Lock_Serializes(t *testing.T) {
	s := newSequencer(t, nil)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock("2026-03-01")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestQueueSequencer_CleanupStaleMutexes(t *testing.T) {
	s := newSequencer(t, nil)

	unlock := s.Lock("2026-03-01")
	unlock()
	held := s.Lock("2026-03-02")

	// a held lock is never dropped, an idle one is
	cleaned := s.cleanupStaleMutexes(time.Now().Add(time.Hour))
	assert.Equal(t, 1, cleaned)

	_, idleKept := s.dayMu.Load("2026-03-01")
	_, heldKept := s.dayMu.Load("2026-03-02")
	assert.False(t, idleKept)
	assert.True(t, heldKept)
	held()

	// Lock keeps working after cleanup
	s.Lock("2026-03-01")()
}

func TestQueueSequencer_StopTwice(t *testing.T) {
	s := NewQueueSequencer(repository.NewQueueEntryRepository(), nil, testutil.NewLogger(), nil, time.UTC)
	s.Stop()
	s.Stop()
}
