package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/shared"
)

// ClaimOutcome represents the arbitration result of a claim submission
type ClaimOutcome string

const (
	ClaimOutcomeWon                 ClaimOutcome = "WON"
	ClaimOutcomeLostAlreadyAssigned ClaimOutcome = "LOST_ALREADY_ASSIGNED"
	ClaimOutcomeLostExpired         ClaimOutcome = "LOST_EXPIRED"
	ClaimOutcomeLostOfferSuperseded ClaimOutcome = "LOST_OFFER_SUPERSEDED"
)

// IsValid checks if the outcome is a valid ClaimOutcome
func (o ClaimOutcome) IsValid() bool {
	switch o {
	case ClaimOutcomeWon, ClaimOutcomeLostAlreadyAssigned,
		ClaimOutcomeLostExpired, ClaimOutcomeLostOfferSuperseded:
		return true
	}
	return false
}

// String returns the string representation of ClaimOutcome
func (o ClaimOutcome) String() string {
	return string(o)
}

// Won reports whether the outcome is the single winning result
func (o ClaimOutcome) Won() bool {
	return o == ClaimOutcomeWon
}

// ClaimAttempt is an append-only audit record of one claim submission.
// It is written after the arbitration decision and never mutated; the log
// exists to reconstruct races during failure analysis, not to drive state.
type ClaimAttempt struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	PartnerID       uuid.UUID
	DispatchAttempt int
	SubmittedAt     time.Time
	Outcome         ClaimOutcome
	CreatedAt       time.Time
}

// NewClaimAttempt creates an audit record for a decided claim
func NewClaimAttempt(orderID, partnerID uuid.UUID, dispatchAttempt int, submittedAt time.Time, outcome ClaimOutcome) (*ClaimAttempt, error) {
	if orderID == uuid.Nil || partnerID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if !outcome.IsValid() {
		return nil, shared.NewDomainError("INVALID_OUTCOME", "Unknown claim outcome")
	}
	return &ClaimAttempt{
		ID:              uuid.New(),
		OrderID:         orderID,
		PartnerID:       partnerID,
		DispatchAttempt: dispatchAttempt,
		SubmittedAt:     submittedAt,
		Outcome:         outcome,
		CreatedAt:       time.Now(),
	}, nil
}
