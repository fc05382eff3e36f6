package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/domain/repository"
	"clinic-front-desk/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// nextQueueNumberScript raises the day counter to at least the database
// maximum (ARGV[1]) and then increments it, all in one atomic step.
// ARGV[2] is the key TTL in seconds.
var nextQueueNumberScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[1])
	if (not current) or (tonumber(current) < tonumber(ARGV[1])) then
		redis.call('SET', KEYS[1], ARGV[1])
	end
	local n = redis.call('INCR', KEYS[1])
	redis.call('EXPIRE', KEYS[1], ARGV[2])
	return n
`)

const (
	RedisQueueCounterKeyPrefix = "queue:counter:"

	// counters outlive their day so late requests around midnight still see them
	queueCounterTTL = 48 * time.Hour

	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// QueueSequencer hands out daily queue numbers.
//
// Callers hold Lock(day) for the whole create transaction and call Next inside
// it. Without Redis the number is MAX(queue_number)+1 read in that transaction;
// with Redis it comes from an INCR seeded from the same maximum. The unique
// (queue_date, queue_number) index is the last line against other processes.
type QueueSequencer struct {
	queueRepo   repository.QueueEntryRepository
	redisClient *redis.Client
	log         *logrus.Logger
	metrics     *metrics.Metrics
	location    *time.Location
	now         func() time.Time

	dayMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64
}

// NewQueueSequencer starts the lock cleanup goroutine; call Stop on shutdown.
// A nil redisClient selects database numbering.
func NewQueueSequencer(
	queueRepo repository.QueueEntryRepository,
	redisClient *redis.Client,
	log *logrus.Logger,
	m *metrics.Metrics,
	location *time.Location,
) *QueueSequencer {
	if location == nil {
		location = time.Local
	}
	s := &QueueSequencer{
		queueRepo:   queueRepo,
		redisClient: redisClient,
		log:         log,
		metrics:     m,
		location:    location,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupMutexMapLoop()

	return s
}

// SetClock replaces the time source
func (s *QueueSequencer) SetClock(now func() time.Time) {
	s.now = now
}

func (s *QueueSequencer) Mode() string {
	if s.redisClient != nil {
		return "redis"
	}
	return "database"
}

// Today returns the clinic-local date used as the queue day
func (s *QueueSequencer) Today() string {
	return s.now().In(s.location).Format(entity.QueueDateLayout)
}

// Stop is safe to call more than once
func (s *QueueSequencer) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("QueueSequencer stopped")
	}
}

// Lock serializes queue creation for one day and returns the unlock func
func (s *QueueSequencer) Lock(day string) func() {
	for {
		mt := s.getDayMutex(day)
		mt.mu.Lock()
		// cleanup may have dropped this mutex while we waited for it
		if current, ok := s.dayMu.Load(day); ok && current == mt {
			mt.lastUsed.Store(time.Now().Unix())
			return mt.mu.Unlock
		}
		mt.mu.Unlock()
	}
}

// Next returns the next number for day. tx must be the transaction that
// will insert the entry.
func (s *QueueSequencer) Next(ctx context.Context, tx *gorm.DB, day string) (int, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.QueueNumberAllocation.WithLabelValues(s.Mode()).Observe(time.Since(start).Seconds())
		}
	}()

	max, err := s.queueRepo.MaxQueueNumber(tx, day)
	if err != nil {
		s.log.Warnf("Failed to read max queue number for %s: %+v", day, err)
		return 0, fmt.Errorf("max queue number for %s: %w", day, err)
	}

	if s.redisClient == nil {
		return max + 1, nil
	}

	key := RedisQueueCounterKeyPrefix + day
	n, err := nextQueueNumberScript.Run(ctx, s.redisClient, []string{key}, max, int(queueCounterTTL.Seconds())).Int()
	if err != nil {
		s.log.Warnf("Failed Lua script nextQueueNumber for %s: %+v", day, err)
		return 0, fmt.Errorf("lua next queue number for %s: %w", day, err)
	}

	s.log.Debugf("Allocated queue number %d for %s", n, day)
	return n, nil
}

func (s *QueueSequencer) getDayMutex(day string) *mutexWithTimestamp {
	mt, _ := s.dayMu.LoadOrStore(day, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *QueueSequencer) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes drops day locks idle since before cutoff.
// lastUsed is checked while holding the lock.
func (s *QueueSequencer) cleanupStaleMutexes(cutoff time.Time) int {
	var cleaned int

	s.dayMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff.Unix() {
				s.dayMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale queue day locks", cleaned)
	}
	return cleaned
}
