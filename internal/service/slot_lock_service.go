package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotLockService serialises slot-map read-modify-write per doctor inside one
// process. Cross-process safety comes from the row lock taken in the booking
// transaction.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire doctor mutex FIRST
// 2. Then open the DB transaction
type SlotLockService struct {
	log *logrus.Logger

	// Per-doctor mutex
	doctorMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	cleanupInterval time.Duration
	staleThreshold  time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix nano timestamp
	holders  atomic.Int32 // -1 once cleanup has retired the entry
}

// NewSlotLockService starts the background cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewSlotLockService(log *logrus.Logger) *SlotLockService {
	return newSlotLockService(log, mutexCleanupInterval, mutexStaleThreshold)
}

func newSlotLockService(log *logrus.Logger, interval, threshold time.Duration) *SlotLockService {
	svc := &SlotLockService{
		log:             log,
		cleanupInterval: interval,
		staleThreshold:  threshold,
		stopChan:        make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

// WithDoctorLock runs fn while holding the doctor's mutex. It gives up with
// ctx.Err() if the lock cannot be acquired before ctx is done.
func (s *SlotLockService) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func() error) error {
	mt := s.acquire(doctorID)
	defer mt.holders.Add(-1)

	acquired := make(chan struct{})
	go func() {
		mt.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// Release the lock once the pending Lock call returns.
		go func() {
			<-acquired
			mt.mu.Unlock()
		}()
		return ctx.Err()
	}
	defer mt.mu.Unlock()

	mt.lastUsed.Store(time.Now().UnixNano())
	return fn()
}

// acquire returns the mutex for a doctor and marks it as in use so cleanup
// never drops it while a caller is waiting on it.
func (s *SlotLockService) acquire(doctorID uuid.UUID) *mutexWithTimestamp {
	for {
		v, _ := s.doctorMu.LoadOrStore(doctorID, &mutexWithTimestamp{})
		mt := v.(*mutexWithTimestamp)
		if mt.hold() {
			mt.lastUsed.Store(time.Now().UnixNano())
			return mt
		}
		// Retired by cleanup; make sure it is gone before storing a new one.
		s.doctorMu.CompareAndDelete(doctorID, mt)
	}
}

// hold registers a holder unless the entry has been retired.
func (mt *mutexWithTimestamp) hold() bool {
	for {
		n := mt.holders.Load()
		if n < 0 {
			return false
		}
		if mt.holders.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *SlotLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety
func (s *SlotLockService) cleanupStaleMutexes() int {
	cutoff := time.Now().Add(-s.staleThreshold).UnixNano()
	var cleaned int

	s.doctorMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		// TryLock first - if we can't get lock, someone is using it
		if mt.mu.TryLock() {
			// Retiring flips holders 0 -> -1, so no acquire can slip in
			// between the check and the delete.
			if mt.lastUsed.Load() < cutoff && mt.holders.CompareAndSwap(0, -1) {
				s.doctorMu.CompareAndDelete(key, mt)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
	return cleaned
}
