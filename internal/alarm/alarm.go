// Package alarm implements the partner-device side of the dispatch handshake:
// the per-offer accept/decline alarm. It mirrors the server's offer window
// locally, submits exactly one claim per offer and maps the arbitration
// outcome onto the alarm screen states.
package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the alarm screen state for one offer
type State string

const (
	StateRinging      State = "RINGING"
	StateAccepting    State = "ACCEPTING"
	StateDeclined     State = "DECLINED"
	StateTimedOut     State = "TIMED_OUT"
	StateAssignedToMe State = "ASSIGNED_TO_ME"
	StateLost         State = "LOST"
)

// Terminal reports whether the state ends the alarm
func (s State) Terminal() bool {
	switch s {
	case StateDeclined, StateTimedOut, StateAssignedToMe, StateLost:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// Options tunes one alarm's timing
type Options struct {
	// RetryInterval is the pause between claim submission retries after a
	// transport failure
	RetryInterval time.Duration
	// Grace extends the local deadline check: past deadline+grace an
	// undecided claim is treated as lost
	Grace time.Duration
}

// DefaultOptions returns the default alarm options
func DefaultOptions() Options {
	return Options{
		RetryInterval: 2 * time.Second,
		Grace:         5 * time.Second,
	}
}

// OfferAlarm is the state machine behind one ringing offer. The local
// countdown is advisory: the server deadline decides, the countdown only
// stops the ringing on the device. Exactly one claim is ever in flight, and
// the countdown is cancelled on every exit path.
type OfferAlarm struct {
	offer     Offer
	partnerID uuid.UUID
	submitter ClaimSubmitter
	opts      Options
	logger    *zap.Logger

	mu        sync.Mutex
	state     State
	countdown *time.Timer
	observers []func(State)
}

// NewOfferAlarm starts ringing for one offer. The countdown is armed
// immediately; an offer whose deadline already passed times out at once.
func NewOfferAlarm(offer Offer, partnerID uuid.UUID, submitter ClaimSubmitter, opts Options, logger *zap.Logger) *OfferAlarm {
	a := &OfferAlarm{
		offer:     offer,
		partnerID: partnerID,
		submitter: submitter,
		opts:      opts,
		logger:    logger,
		state:     StateRinging,
	}

	delay := time.Until(offer.Deadline)
	if delay < 0 {
		delay = 0
	}
	a.countdown = time.AfterFunc(delay, a.timeout)
	return a
}

// Offer returns the offer this alarm rings for
func (a *OfferAlarm) Offer() Offer {
	return a.offer
}

// State returns the current alarm state
func (a *OfferAlarm) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// OnTransition registers an observer invoked after every state change.
// Observers run outside the alarm lock.
func (a *OfferAlarm) OnTransition(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// Accept submits the claim for this offer and blocks until the outcome is
// known. Transport failures retry the identical submission; the server
// deduplicates, so retrying a decided claim returns the recorded outcome.
// Past deadline+grace with no answer the claim is treated as lost.
func (a *OfferAlarm) Accept(ctx context.Context) State {
	if !a.transition(StateRinging, StateAccepting) {
		return a.State()
	}

	giveUp := a.offer.Deadline.Add(a.opts.Grace)
	for {
		result, err := a.submitter.Submit(ctx, a.offer.OrderID, a.partnerID, a.offer.DispatchAttempt)
		if err == nil {
			if result.Won() {
				a.transition(StateAccepting, StateAssignedToMe)
			} else {
				a.transition(StateAccepting, StateLost)
			}
			return a.State()
		}

		a.logger.Warn("claim submission failed, will retry",
			zap.String("order_id", a.offer.OrderID.String()),
			zap.Int("dispatch_attempt", a.offer.DispatchAttempt),
			zap.Error(err),
		)

		if time.Now().After(giveUp) {
			a.transition(StateAccepting, StateLost)
			return a.State()
		}
		select {
		case <-ctx.Done():
			a.transition(StateAccepting, StateLost)
			return a.State()
		case <-time.After(a.opts.RetryInterval):
		}
	}
}

// Decline dismisses a ringing offer locally. Nothing is sent to the server;
// the offer simply expires there.
func (a *OfferAlarm) Decline() bool {
	return a.transition(StateRinging, StateDeclined)
}

// Supersede silences a ringing alarm whose offer was replaced by a newer
// dispatch attempt. A claim already in flight is left alone: arbitration
// will answer it with the superseded outcome.
func (a *OfferAlarm) Supersede() bool {
	return a.transition(StateRinging, StateTimedOut)
}

func (a *OfferAlarm) timeout() {
	a.transition(StateRinging, StateTimedOut)
}

// transition performs the from -> to state change if the alarm is currently
// in from. The countdown is stopped whenever the alarm leaves RINGING.
func (a *OfferAlarm) transition(from, to State) bool {
	a.mu.Lock()
	if a.state != from {
		a.mu.Unlock()
		return false
	}
	a.state = to
	if from == StateRinging && a.countdown != nil {
		a.countdown.Stop()
	}
	observers := make([]func(State), len(a.observers))
	copy(observers, a.observers)
	a.mu.Unlock()

	for _, fn := range observers {
		fn(to)
	}
	return true
}
