package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type expiryRecorder struct {
	mu    sync.Mutex
	fired []string
	done  chan struct{}
}

func newExpiryRecorder(expected int) *expiryRecorder {
	r := &expiryRecorder{done: make(chan struct{}, expected)}
	return r
}

func (r *expiryRecorder) handle(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) {
	r.mu.Lock()
	r.fired = append(r.fired, timerKey(orderID, dispatchAttempt))
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *expiryRecorder) firedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.fired))
	copy(out, r.fired)
	return out
}

func (r *expiryRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry handler did not fire")
	}
}

func TestTimeoutSupervisor_FiresAtDeadline(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	recorder := newExpiryRecorder(1)
	supervisor.SetExpiryHandler(recorder.handle)

	orderID := uuid.New()
	supervisor.Schedule(orderID, 1, time.Now().Add(10*time.Millisecond))
	assert.Equal(t, 1, supervisor.Pending())

	recorder.wait(t)
	assert.Equal(t, []string{timerKey(orderID, 1)}, recorder.firedKeys())
	assert.Equal(t, 0, supervisor.Pending())
}

func TestTimeoutSupervisor_DuplicateScheduleFiresOnce(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	recorder := newExpiryRecorder(2)
	supervisor.SetExpiryHandler(recorder.handle)

	orderID := uuid.New()
	deadline := time.Now().Add(10 * time.Millisecond)
	supervisor.Schedule(orderID, 1, deadline)
	supervisor.Schedule(orderID, 1, deadline)
	assert.Equal(t, 1, supervisor.Pending())

	recorder.wait(t)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, recorder.firedKeys(), 1)
}

func TestTimeoutSupervisor_DistinctAttemptsAreIndependent(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	recorder := newExpiryRecorder(2)
	supervisor.SetExpiryHandler(recorder.handle)

	orderID := uuid.New()
	supervisor.Schedule(orderID, 1, time.Now().Add(10*time.Millisecond))
	supervisor.Schedule(orderID, 2, time.Now().Add(15*time.Millisecond))
	assert.Equal(t, 2, supervisor.Pending())

	recorder.wait(t)
	recorder.wait(t)
	assert.ElementsMatch(t,
		[]string{timerKey(orderID, 1), timerKey(orderID, 2)},
		recorder.firedKeys(),
	)
}

func TestTimeoutSupervisor_CancelDisarms(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	recorder := newExpiryRecorder(1)
	supervisor.SetExpiryHandler(recorder.handle)

	orderID := uuid.New()
	supervisor.Schedule(orderID, 1, time.Now().Add(20*time.Millisecond))
	supervisor.Cancel(orderID, 1)
	assert.Equal(t, 0, supervisor.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, recorder.firedKeys())
}

func TestTimeoutSupervisor_CancelUnknownIsNoOp(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	supervisor.SetExpiryHandler(newExpiryRecorder(1).handle)
	supervisor.Cancel(uuid.New(), 1)
	assert.Equal(t, 0, supervisor.Pending())
}

func TestTimeoutSupervisor_PastDeadlineFiresImmediately(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	recorder := newExpiryRecorder(1)
	supervisor.SetExpiryHandler(recorder.handle)

	orderID := uuid.New()
	supervisor.Schedule(orderID, 1, time.Now().Add(-time.Minute))
	recorder.wait(t)
	assert.Equal(t, []string{timerKey(orderID, 1)}, recorder.firedKeys())
}

func TestTimeoutSupervisor_HandlerPanicIsContained(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	fired := make(chan struct{}, 1)
	supervisor.SetExpiryHandler(func(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) {
		fired <- struct{}{}
		panic("boom")
	})

	supervisor.Schedule(uuid.New(), 1, time.Now().Add(5*time.Millisecond))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry handler did not fire")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, supervisor.Stop(ctx))
}

func TestTimeoutSupervisor_StopDisarmsAndRejectsNewSchedules(t *testing.T) {
	supervisor := NewTimeoutSupervisor(zap.NewNop())
	recorder := newExpiryRecorder(1)
	supervisor.SetExpiryHandler(recorder.handle)

	supervisor.Schedule(uuid.New(), 1, time.Now().Add(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, supervisor.Stop(ctx))
	assert.Equal(t, 0, supervisor.Pending())

	supervisor.Schedule(uuid.New(), 1, time.Now().Add(10*time.Millisecond))
	assert.Equal(t, 0, supervisor.Pending())
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, recorder.firedKeys())
}
