package alarm

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is the push payload the device receives for one dispatch attempt
type Offer struct {
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	DispatchAttempt  int             `json:"dispatch_attempt"`
	Deadline         time.Time       `json:"deadline"`
	EarningsEstimate decimal.Decimal `json:"earnings_estimate"`
	DropoffSummary   string          `json:"dropoff_summary"`
}

// ClaimResult is the arbitration answer for one claim submission
type ClaimResult struct {
	Outcome string
}

// Claim outcome codes as the dispatch API returns them
const (
	OutcomeWon                 = "WON"
	OutcomeLostAlreadyAssigned = "LOST_ALREADY_ASSIGNED"
	OutcomeLostExpired         = "LOST_EXPIRED"
	OutcomeLostOfferSuperseded = "LOST_OFFER_SUPERSEDED"
)

// Won reports whether this device owns the order now
func (r ClaimResult) Won() bool {
	return r.Outcome == OutcomeWon
}
