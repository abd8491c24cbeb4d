package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
)

// PushSender delivers a dispatch offer to one device messaging token.
// Delivery is best-effort: retries and ordering belong to the messaging
// transport, not to the dispatcher.
type PushSender interface {
	Send(ctx context.Context, token string, offer *dispatch.DispatchOffer) error
}

// PickupContext carries whatever the ranking heuristic needs to order
// candidates for one pickup. The heuristic itself is pluggable; the
// dispatcher only passes this through.
type PickupContext struct {
	OrderID        uuid.UUID
	DropoffSummary string
}

// CandidateRanker orders dispatchable partners by preference for a pickup.
// Implementations may use proximity, load or anything else; the dispatcher
// takes the ranking as given.
type CandidateRanker interface {
	Rank(ctx context.Context, candidates []dispatch.Partner, pickup PickupContext) []dispatch.Partner
}

// CandidateRankerFunc adapts a function to the CandidateRanker interface
type CandidateRankerFunc func(ctx context.Context, candidates []dispatch.Partner, pickup PickupContext) []dispatch.Partner

// Rank calls the underlying function
func (f CandidateRankerFunc) Rank(ctx context.Context, candidates []dispatch.Partner, pickup PickupContext) []dispatch.Partner {
	return f(ctx, candidates, pickup)
}

// ClaimOutcomeStore remembers decided claim outcomes so that idempotent
// client retries of the same (order, attempt, partner) submission get the
// recorded answer without re-arbitration.
type ClaimOutcomeStore interface {
	// Remember stores the outcome under the key with a TTL
	Remember(ctx context.Context, key string, outcome dispatch.ClaimOutcome, ttl time.Duration) error
	// Lookup returns the recorded outcome, if any
	Lookup(ctx context.Context, key string) (dispatch.ClaimOutcome, bool, error)
}
