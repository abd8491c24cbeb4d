package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository persists dispatch orders. The three conditional transitions
// (MarkOffered, ClaimForPartner, ReleaseExpired) must be implemented as a
// single atomic conditional update against the order row: exactly one
// concurrent caller may observe the precondition as true. Read-then-write
// sequences are not acceptable implementations.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	Save(ctx context.Context, order *Order) error

	// MarkOffered transitions the order to OFFERED with the given deadline and
	// attempt number, provided the row still carries expectedAttempt and a
	// status from which OFFERED is reachable. Returns false when the guard
	// failed (raced with a claim or another dispatcher), without error.
	MarkOffered(ctx context.Context, orderID uuid.UUID, expectedAttempt int, newAttempt int, deadline time.Time) (bool, error)

	// ClaimForPartner atomically assigns the order to the partner, provided
	// the row is still OFFERED at exactly the given attempt. Returns true for
	// the single winner; false for every other caller.
	ClaimForPartner(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (bool, error)

	// ReleaseExpired transitions OFFERED at the given attempt to UNASSIGNED.
	// Returns false when the guard failed, e.g. a claim won in the meantime
	// or a re-dispatch already bumped the attempt.
	ReleaseExpired(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) (bool, error)

	// FindUnassigned lists orders parked for operator handling
	FindUnassigned(ctx context.Context) ([]Order, error)

	// FindOffered lists orders with an outstanding offer. Used at startup to
	// re-arm deadline timers, which live only in process memory.
	FindOffered(ctx context.Context) ([]Order, error)
}

// PartnerRepository persists delivery partners
type PartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	Save(ctx context.Context, partner *Partner) error
	// FindOnline returns all partners currently marked online
	FindOnline(ctx context.Context) ([]Partner, error)
}

// ClaimAttemptRepository is the append-only claim audit log
type ClaimAttemptRepository interface {
	Append(ctx context.Context, attempt *ClaimAttempt) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ClaimAttempt, error)
}
