package alarm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedSubmitter returns queued results and errors in order, then repeats
// the last entry
type scriptedSubmitter struct {
	mu      sync.Mutex
	script  []func() (ClaimResult, error)
	calls   int
	lastKey string
}

func (s *scriptedSubmitter) Submit(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	s.lastKey = orderID.String() + ":" + partnerID.String()
	return s.script[idx]()
}

func (s *scriptedSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func submitWon() func() (ClaimResult, error) {
	return func() (ClaimResult, error) { return ClaimResult{Outcome: OutcomeWon}, nil }
}

func submitLost(code string) func() (ClaimResult, error) {
	return func() (ClaimResult, error) { return ClaimResult{Outcome: code}, nil }
}

func submitErr() func() (ClaimResult, error) {
	return func() (ClaimResult, error) { return ClaimResult{}, errors.New("connection refused") }
}

func testOffer(attempt int, deadline time.Time) Offer {
	return Offer{
		OrderID:          uuid.New(),
		OrderNumber:      "ORD-3001",
		DispatchAttempt:  attempt,
		Deadline:         deadline,
		EarningsEstimate: decimal.NewFromFloat(7.50),
		DropoffSummary:   "2 items to Elm Street 12",
	}
}

func fastOptions() Options {
	return Options{RetryInterval: 5 * time.Millisecond, Grace: 50 * time.Millisecond}
}

func TestOfferAlarm_AcceptWins(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitWon()}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(time.Minute)), uuid.New(), submitter, fastOptions(), zap.NewNop())
	require.Equal(t, StateRinging, a.State())

	state := a.Accept(context.Background())
	assert.Equal(t, StateAssignedToMe, state)
	assert.Equal(t, 1, submitter.callCount())
}

func TestOfferAlarm_AcceptLoses(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"already assigned", OutcomeLostAlreadyAssigned},
		{"expired", OutcomeLostExpired},
		{"superseded", OutcomeLostOfferSuperseded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitLost(tt.code)}}
			a := NewOfferAlarm(testOffer(1, time.Now().Add(time.Minute)), uuid.New(), submitter, fastOptions(), zap.NewNop())

			state := a.Accept(context.Background())
			assert.Equal(t, StateLost, state)
		})
	}
}

func TestOfferAlarm_AcceptRetriesTransportFailures(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){
		submitErr(),
		submitErr(),
		submitWon(),
	}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(time.Minute)), uuid.New(), submitter, fastOptions(), zap.NewNop())

	state := a.Accept(context.Background())
	assert.Equal(t, StateAssignedToMe, state)
	assert.Equal(t, 3, submitter.callCount())
}

func TestOfferAlarm_AcceptGivesUpPastDeadlineGrace(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitErr()}}
	opts := Options{RetryInterval: 5 * time.Millisecond, Grace: 20 * time.Millisecond}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(10*time.Millisecond)), uuid.New(), submitter, opts, zap.NewNop())

	state := a.Accept(context.Background())
	assert.Equal(t, StateLost, state, "an undecided claim past deadline+grace is treated as lost")
	assert.GreaterOrEqual(t, submitter.callCount(), 1)
}

func TestOfferAlarm_AcceptStopsCountdown(t *testing.T) {
	block := make(chan struct{})
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){
		func() (ClaimResult, error) {
			<-block
			return ClaimResult{Outcome: OutcomeWon}, nil
		},
	}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(30*time.Millisecond)), uuid.New(), submitter, fastOptions(), zap.NewNop())

	done := make(chan State, 1)
	go func() { done <- a.Accept(context.Background()) }()

	// Let the local countdown pass while the claim is still in flight. The
	// countdown must not fire: the server deadline decides now.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, StateAccepting, a.State())
	close(block)

	select {
	case state := <-done:
		assert.Equal(t, StateAssignedToMe, state)
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not return")
	}
}

func TestOfferAlarm_Decline(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitWon()}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(time.Minute)), uuid.New(), submitter, fastOptions(), zap.NewNop())

	assert.True(t, a.Decline())
	assert.Equal(t, StateDeclined, a.State())

	// Terminal: a late accept is a no-op and never submits.
	state := a.Accept(context.Background())
	assert.Equal(t, StateDeclined, state)
	assert.Equal(t, 0, submitter.callCount())
}

func TestOfferAlarm_CountdownTimesOut(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitWon()}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(10*time.Millisecond)), uuid.New(), submitter, fastOptions(), zap.NewNop())

	assert.Eventually(t, func() bool {
		return a.State() == StateTimedOut
	}, 2*time.Second, 5*time.Millisecond)

	assert.False(t, a.Decline(), "a timed out alarm cannot be declined")
	state := a.Accept(context.Background())
	assert.Equal(t, StateTimedOut, state)
	assert.Equal(t, 0, submitter.callCount())
}

func TestOfferAlarm_ExpiredOfferTimesOutImmediately(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitWon()}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(-time.Second)), uuid.New(), submitter, fastOptions(), zap.NewNop())

	assert.Eventually(t, func() bool {
		return a.State() == StateTimedOut
	}, 2*time.Second, time.Millisecond)
}

func TestOfferAlarm_ObserverSeesTransitions(t *testing.T) {
	submitter := &scriptedSubmitter{script: []func() (ClaimResult, error){submitWon()}}
	a := NewOfferAlarm(testOffer(1, time.Now().Add(time.Minute)), uuid.New(), submitter, fastOptions(), zap.NewNop())

	var mu sync.Mutex
	var seen []State
	a.OnTransition(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	a.Accept(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateAccepting, StateAssignedToMe}, seen)
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StateRinging.Terminal())
	assert.False(t, StateAccepting.Terminal())
	assert.True(t, StateDeclined.Terminal())
	assert.True(t, StateTimedOut.Terminal())
	assert.True(t, StateAssignedToMe.Terminal())
	assert.True(t, StateLost.Terminal())
}
