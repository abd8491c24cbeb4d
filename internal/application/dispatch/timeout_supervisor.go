package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpiryFunc is invoked when an offer deadline fires. The callee must
// re-read the order state: the timer only wakes the check up, the store is
// the source of truth. Firing twice for the same attempt must be safe.
type ExpiryFunc func(ctx context.Context, orderID uuid.UUID, dispatchAttempt int)

// TimeoutSupervisor enforces the deadline of outstanding dispatch offers.
// It keeps exactly one scheduled wake-up per (order, attempt) instead of
// polling every offered order continuously.
type TimeoutSupervisor struct {
	handler ExpiryFunc
	logger  *zap.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewTimeoutSupervisor creates a new TimeoutSupervisor
func NewTimeoutSupervisor(logger *zap.Logger) *TimeoutSupervisor {
	return &TimeoutSupervisor{
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// SetExpiryHandler sets the callback invoked when an offer deadline fires.
// Must be called before Schedule; kept separate from the constructor because
// the dispatcher and the supervisor reference each other.
func (s *TimeoutSupervisor) SetExpiryHandler(handler ExpiryFunc) {
	s.handler = handler
}

func timerKey(orderID uuid.UUID, dispatchAttempt int) string {
	return fmt.Sprintf("%s:%d", orderID, dispatchAttempt)
}

// Schedule arms one wake-up for the offer at its deadline. Scheduling the
// same (order, attempt) twice is a no-op; deadlines already in the past fire
// immediately.
func (s *TimeoutSupervisor) Schedule(orderID uuid.UUID, dispatchAttempt int, deadline time.Time) {
	key := timerKey(orderID, dispatchAttempt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if _, exists := s.timers[key]; exists {
		return
	}

	delay := time.Until(deadline)
	if delay < 0 {
		delay = 0
	}

	s.wg.Add(1)
	s.timers[key] = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.fire(key, orderID, dispatchAttempt)
	})

	s.logger.Debug("offer deadline scheduled",
		zap.String("order_id", orderID.String()),
		zap.Int("dispatch_attempt", dispatchAttempt),
		zap.Time("deadline", deadline),
	)
}

// Cancel disarms the wake-up for one offer. Safe to call for offers that
// were never scheduled or already fired.
func (s *TimeoutSupervisor) Cancel(orderID uuid.UUID, dispatchAttempt int) {
	key := timerKey(orderID, dispatchAttempt)

	s.mu.Lock()
	defer s.mu.Unlock()
	timer, exists := s.timers[key]
	if !exists {
		return
	}
	delete(s.timers, key)
	if timer.Stop() {
		s.wg.Done()
	}
}

// Pending returns the number of armed wake-ups. Used by tests and health
// reporting.
func (s *TimeoutSupervisor) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms all timers and waits for in-flight expiry handlers
func (s *TimeoutSupervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for key, timer := range s.timers {
		delete(s.timers, key)
		if timer.Stop() {
			s.wg.Done()
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TimeoutSupervisor) fire(key string, orderID uuid.UUID, dispatchAttempt int) {
	s.mu.Lock()
	delete(s.timers, key)
	stopped := s.stopped
	s.mu.Unlock()
	if stopped || s.handler == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("expiry handler panicked",
				zap.String("order_id", orderID.String()),
				zap.Int("dispatch_attempt", dispatchAttempt),
				zap.Any("panic", r),
			)
		}
	}()

	s.handler(context.Background(), orderID, dispatchAttempt)
}
