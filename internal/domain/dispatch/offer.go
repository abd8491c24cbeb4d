package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DispatchOffer is one round of proposing an order to a candidate set under
// a single dispatch attempt. Offers are ephemeral: a newer attempt for the
// same order supersedes the previous offer rather than mutating it.
type DispatchOffer struct {
	OrderID             uuid.UUID
	OrderNumber         string
	DispatchAttempt     int
	CandidatePartnerIDs []uuid.UUID
	Deadline            time.Time
	EarningsEstimate    decimal.Decimal
	DropoffSummary      string
	CreatedAt           time.Time
}

// NewDispatchOffer builds the offer for an order that has just entered OFFERED
func NewDispatchOffer(order *Order, candidateIDs []uuid.UUID) *DispatchOffer {
	offer := &DispatchOffer{
		OrderID:             order.ID,
		OrderNumber:         order.OrderNumber,
		DispatchAttempt:     order.DispatchAttempt,
		CandidatePartnerIDs: make([]uuid.UUID, len(candidateIDs)),
		EarningsEstimate:    order.EarningsEstimate,
		DropoffSummary:      order.DropoffSummary,
		CreatedAt:           time.Now(),
	}
	copy(offer.CandidatePartnerIDs, candidateIDs)
	if order.DispatchDeadline != nil {
		offer.Deadline = *order.DispatchDeadline
	}
	return offer
}
