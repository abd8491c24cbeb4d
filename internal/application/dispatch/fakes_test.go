package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/shared"
)

// memOrderRepo emulates the persistence layer's atomic conditional updates
// with a mutex: each conditional transition evaluates its guard and applies
// the write under one critical section, like the SQL UPDATE ... WHERE does.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*dispatch.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*dispatch.Order)}
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*dispatch.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) Save(ctx context.Context, order *dispatch.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) MarkOffered(ctx context.Context, orderID uuid.UUID, expectedAttempt, newAttempt int, deadline time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if !order.Status.CanTransitionTo(dispatch.OrderStatusOffered) || order.DispatchAttempt != expectedAttempt {
		return false, nil
	}
	order.Status = dispatch.OrderStatusOffered
	order.DispatchAttempt = newAttempt
	order.DispatchDeadline = &deadline
	return true, nil
}

func (r *memOrderRepo) ClaimForPartner(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if order.Status != dispatch.OrderStatusOffered ||
		order.DispatchAttempt != dispatchAttempt ||
		order.DispatchDeadline == nil ||
		!order.DispatchDeadline.After(time.Now()) {
		return false, nil
	}
	order.Status = dispatch.OrderStatusAssigned
	order.AssignedPartnerID = &partnerID
	order.DispatchDeadline = nil
	return true, nil
}

func (r *memOrderRepo) ReleaseExpired(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if order.Status != dispatch.OrderStatusOffered || order.DispatchAttempt != dispatchAttempt {
		return false, nil
	}
	order.Status = dispatch.OrderStatusUnassigned
	order.DispatchDeadline = nil
	return true, nil
}

func (r *memOrderRepo) FindUnassigned(ctx context.Context) ([]dispatch.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dispatch.Order
	for _, order := range r.orders {
		if order.Status == dispatch.OrderStatusUnassigned {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindOffered(ctx context.Context) ([]dispatch.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dispatch.Order
	for _, order := range r.orders {
		if order.Status == dispatch.OrderStatusOffered {
			out = append(out, *order)
		}
	}
	return out, nil
}

type memPartnerRepo struct {
	mu       sync.Mutex
	partners map[uuid.UUID]*dispatch.Partner
}

func newMemPartnerRepo() *memPartnerRepo {
	return &memPartnerRepo{partners: make(map[uuid.UUID]*dispatch.Partner)}
}

func (r *memPartnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	partner, ok := r.partners[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *partner
	return &copied, nil
}

func (r *memPartnerRepo) Save(ctx context.Context, partner *dispatch.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *partner
	r.partners[partner.ID] = &copied
	return nil
}

func (r *memPartnerRepo) FindOnline(ctx context.Context) ([]dispatch.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dispatch.Partner
	for _, partner := range r.partners {
		if partner.OnlineStatus {
			out = append(out, *partner)
		}
	}
	return out, nil
}

type memAttemptRepo struct {
	mu       sync.Mutex
	attempts []dispatch.ClaimAttempt
}

func newMemAttemptRepo() *memAttemptRepo {
	return &memAttemptRepo{}
}

func (r *memAttemptRepo) Append(ctx context.Context, attempt *dispatch.ClaimAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *memAttemptRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dispatch.ClaimAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dispatch.ClaimAttempt
	for _, a := range r.attempts {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memOutcomeStore struct {
	mu       sync.Mutex
	outcomes map[string]dispatch.ClaimOutcome
}

func newMemOutcomeStore() *memOutcomeStore {
	return &memOutcomeStore{outcomes: make(map[string]dispatch.ClaimOutcome)}
}

func (s *memOutcomeStore) Remember(ctx context.Context, key string, outcome dispatch.ClaimOutcome, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[key] = outcome
	return nil
}

func (s *memOutcomeStore) Lookup(ctx context.Context, key string) (dispatch.ClaimOutcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.outcomes[key]
	return outcome, ok, nil
}

// fakePush records sends and can be told to fail specific tokens.
// onSend, when set, observes the repo state at send time.
type fakePush struct {
	mu         sync.Mutex
	sent       []string
	failTokens map[string]bool
	onSend     func(token string, offer *dispatch.DispatchOffer)
}

func newFakePush() *fakePush {
	return &fakePush{failTokens: make(map[string]bool)}
}

func (p *fakePush) Send(ctx context.Context, token string, offer *dispatch.DispatchOffer) error {
	p.mu.Lock()
	onSend := p.onSend
	fail := p.failTokens[token]
	if !fail {
		p.sent = append(p.sent, token)
	}
	p.mu.Unlock()

	if onSend != nil {
		onSend(token, offer)
	}
	if fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *fakePush) sentTokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	copy(out, p.sent)
	return out
}

// capturingPublisher collects published domain events
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}
