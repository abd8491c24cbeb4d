package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/shopspring/decimal"
)

// RegisterOrderRequest registers a ready-for-dispatch order from the
// order-management system
type RegisterOrderRequest struct {
	OrderNumber      string          `json:"order_number" binding:"required"`
	EarningsEstimate decimal.Decimal `json:"earnings_estimate" binding:"required"`
	DropoffSummary   string          `json:"dropoff_summary" binding:"required"`
}

// OrderResponse is the dispatch view of an order
type OrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"order_number"`
	Status            string          `json:"status"`
	AssignedPartnerID *uuid.UUID      `json:"assigned_partner_id,omitempty"`
	DispatchDeadline  *time.Time      `json:"dispatch_deadline,omitempty"`
	DispatchAttempt   int             `json:"dispatch_attempt"`
	EarningsEstimate  decimal.Decimal `json:"earnings_estimate"`
	DropoffSummary    string          `json:"dropoff_summary"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its response DTO
func ToOrderResponse(order *dispatch.Order) OrderResponse {
	return OrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		Status:            order.Status.String(),
		AssignedPartnerID: order.AssignedPartnerID,
		DispatchDeadline:  order.DispatchDeadline,
		DispatchAttempt:   order.DispatchAttempt,
		EarningsEstimate:  order.EarningsEstimate,
		DropoffSummary:    order.DropoffSummary,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

// PartnerResponse is the registry view of a partner
type PartnerResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	OnlineStatus bool       `json:"online_status"`
	HasToken     bool       `json:"has_token"`
	LastOnlineAt *time.Time `json:"last_online_at,omitempty"`
}

// ToPartnerResponse converts a domain partner to its response DTO.
// The raw messaging token is never exposed over the API.
func ToPartnerResponse(partner *dispatch.Partner) PartnerResponse {
	return PartnerResponse{
		ID:           partner.ID,
		Name:         partner.Name,
		OnlineStatus: partner.OnlineStatus,
		HasToken:     partner.MessagingToken != nil && *partner.MessagingToken != "",
		LastOnlineAt: partner.LastOnlineAt,
	}
}

// OfferResponse describes one dispatch offer round
type OfferResponse struct {
	OrderID             uuid.UUID       `json:"order_id"`
	OrderNumber         string          `json:"order_number"`
	DispatchAttempt     int             `json:"dispatch_attempt"`
	CandidatePartnerIDs []uuid.UUID     `json:"candidate_partner_ids"`
	Deadline            time.Time       `json:"deadline"`
	EarningsEstimate    decimal.Decimal `json:"earnings_estimate"`
	DropoffSummary      string          `json:"dropoff_summary"`
}

// ToOfferResponse converts a dispatch offer to its response DTO
func ToOfferResponse(offer *dispatch.DispatchOffer) OfferResponse {
	return OfferResponse{
		OrderID:             offer.OrderID,
		OrderNumber:         offer.OrderNumber,
		DispatchAttempt:     offer.DispatchAttempt,
		CandidatePartnerIDs: offer.CandidatePartnerIDs,
		Deadline:            offer.Deadline,
		EarningsEstimate:    offer.EarningsEstimate,
		DropoffSummary:      offer.DropoffSummary,
	}
}

// ClaimAttemptResponse is one entry of the claim audit trail
type ClaimAttemptResponse struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"order_id"`
	PartnerID       uuid.UUID `json:"partner_id"`
	DispatchAttempt int       `json:"dispatch_attempt"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Outcome         string    `json:"outcome"`
}

// ToClaimAttemptResponse converts a claim attempt to its response DTO
func ToClaimAttemptResponse(attempt *dispatch.ClaimAttempt) ClaimAttemptResponse {
	return ClaimAttemptResponse{
		ID:              attempt.ID,
		OrderID:         attempt.OrderID,
		PartnerID:       attempt.PartnerID,
		DispatchAttempt: attempt.DispatchAttempt,
		SubmittedAt:     attempt.SubmittedAt,
		Outcome:         attempt.Outcome.String(),
	}
}
