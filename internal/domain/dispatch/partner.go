package dispatch

import (
	"time"

	"github.com/quickcart/backend/internal/domain/shared"
)

// Partner represents a delivery partner known to the dispatch subsystem
type Partner struct {
	shared.BaseEntity
	Name           string
	OnlineStatus   bool
	MessagingToken *string
	LastOnlineAt   *time.Time
}

// NewPartner creates a new delivery partner, initially offline
func NewPartner(name string) (*Partner, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER_NAME", "Partner name cannot be empty")
	}
	return &Partner{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// SetOnline marks the partner online and stores the device messaging token
func (p *Partner) SetOnline(token string) error {
	if token == "" {
		return shared.NewDomainError("INVALID_TOKEN", "Messaging token cannot be empty")
	}

	now := time.Now()
	p.OnlineStatus = true
	p.MessagingToken = &token
	p.LastOnlineAt = &now
	p.UpdatedAt = now
	return nil
}

// SetOffline marks the partner offline. Idempotent: calling it on an
// already-offline partner is not an error. The stale token is kept so a
// later SetOnline without a fresh token still has something to rotate from,
// but offline partners are never dispatch candidates regardless.
func (p *Partner) SetOffline() {
	if !p.OnlineStatus {
		return
	}
	p.OnlineStatus = false
	p.UpdatedAt = time.Now()
}

// RefreshToken overwrites the messaging token without touching the online
// status. Token rotation on the device must not force a status change.
func (p *Partner) RefreshToken(token string) error {
	if token == "" {
		return shared.NewDomainError("INVALID_TOKEN", "Messaging token cannot be empty")
	}
	p.MessagingToken = &token
	p.UpdatedAt = time.Now()
	return nil
}

// Dispatchable reports whether the partner can receive a dispatch offer
func (p *Partner) Dispatchable() bool {
	return p.OnlineStatus && p.MessagingToken != nil && *p.MessagingToken != ""
}
