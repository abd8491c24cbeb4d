package alarm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Manager routes incoming offer pushes to per-offer alarms. The push channel
// is unreliable: the same offer may arrive twice, a newer attempt may arrive
// while an older one still rings, and pushes may be lost entirely. The
// manager absorbs all three.
type Manager struct {
	partnerID uuid.UUID
	submitter ClaimSubmitter
	opts      Options
	logger    *zap.Logger

	mu     sync.Mutex
	alarms map[uuid.UUID]*OfferAlarm
}

// NewManager creates a new alarm Manager for one partner device
func NewManager(partnerID uuid.UUID, submitter ClaimSubmitter, opts Options, logger *zap.Logger) *Manager {
	return &Manager{
		partnerID: partnerID,
		submitter: submitter,
		opts:      opts,
		logger:    logger,
		alarms:    make(map[uuid.UUID]*OfferAlarm),
	}
}

// HandleOffer processes one incoming push. A duplicate of the current offer
// is ignored; a newer attempt supersedes and replaces the ringing alarm; a
// stale attempt older than the current alarm is dropped.
func (m *Manager) HandleOffer(offer Offer) *OfferAlarm {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.alarms[offer.OrderID]; ok {
		switch {
		case offer.DispatchAttempt == existing.Offer().DispatchAttempt:
			return existing
		case offer.DispatchAttempt < existing.Offer().DispatchAttempt:
			m.logger.Debug("dropping stale offer push",
				zap.String("order_id", offer.OrderID.String()),
				zap.Int("dispatch_attempt", offer.DispatchAttempt),
			)
			return existing
		default:
			existing.Supersede()
		}
	}

	a := NewOfferAlarm(offer, m.partnerID, m.submitter, m.opts, m.logger)
	m.alarms[offer.OrderID] = a
	m.logger.Info("offer ringing",
		zap.String("order_id", offer.OrderID.String()),
		zap.Int("dispatch_attempt", offer.DispatchAttempt),
		zap.Time("deadline", offer.Deadline),
	)
	return a
}

// Alarm returns the alarm for one order, if any
func (m *Manager) Alarm(orderID uuid.UUID) (*OfferAlarm, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alarms[orderID]
	return a, ok
}

// Accept accepts the ringing offer for one order and blocks until the
// arbitration outcome is known
func (m *Manager) Accept(ctx context.Context, orderID uuid.UUID) (State, error) {
	m.mu.Lock()
	a, ok := m.alarms[orderID]
	m.mu.Unlock()
	if !ok {
		return "", shared.ErrNotFound
	}
	return a.Accept(ctx), nil
}

// Decline dismisses the ringing offer for one order
func (m *Manager) Decline(orderID uuid.UUID) error {
	m.mu.Lock()
	a, ok := m.alarms[orderID]
	m.mu.Unlock()
	if !ok {
		return shared.ErrNotFound
	}
	a.Decline()
	return nil
}

// Prune drops alarms that reached a terminal state and returns how many
// were removed
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for orderID, a := range m.alarms {
		if a.State().Terminal() {
			delete(m.alarms, orderID)
			removed++
		}
	}
	return removed
}
