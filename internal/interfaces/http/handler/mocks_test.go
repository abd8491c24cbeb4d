package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/notification"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository implements dispatch.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatch.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*dispatch.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatch.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *dispatch.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkOffered(ctx context.Context, orderID uuid.UUID, expectedAttempt int, newAttempt int, deadline time.Time) (bool, error) {
	args := m.Called(ctx, orderID, expectedAttempt, newAttempt, deadline)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ClaimForPartner(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (bool, error) {
	args := m.Called(ctx, orderID, partnerID, dispatchAttempt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ReleaseExpired(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) (bool, error) {
	args := m.Called(ctx, orderID, dispatchAttempt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FindUnassigned(ctx context.Context) ([]dispatch.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispatch.Order), args.Error(1)
}

func (m *MockOrderRepository) FindOffered(ctx context.Context) ([]dispatch.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispatch.Order), args.Error(1)
}

// MockPartnerRepository implements dispatch.PartnerRepository for testing
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatch.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Save(ctx context.Context, partner *dispatch.Partner) error {
	args := m.Called(ctx, partner)
	return args.Error(0)
}

func (m *MockPartnerRepository) FindOnline(ctx context.Context) ([]dispatch.Partner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispatch.Partner), args.Error(1)
}

// MockClaimAttemptRepository implements dispatch.ClaimAttemptRepository for testing
type MockClaimAttemptRepository struct {
	mock.Mock
}

func (m *MockClaimAttemptRepository) Append(ctx context.Context, attempt *dispatch.ClaimAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockClaimAttemptRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dispatch.ClaimAttempt, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispatch.ClaimAttempt), args.Error(1)
}

// MockAlertRepository implements notification.AlertRepository for testing
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.SellerAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.SellerAlert), args.Error(1)
}

func (m *MockAlertRepository) Save(ctx context.Context, alert *notification.SellerAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) FindOpen(ctx context.Context) ([]notification.SellerAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.SellerAlert), args.Error(1)
}

func (m *MockAlertRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]notification.SellerAlert, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.SellerAlert), args.Error(1)
}

// noopPushSender discards offer pushes in tests
type noopPushSender struct{}

func (noopPushSender) Send(ctx context.Context, token string, offer *dispatch.DispatchOffer) error {
	return nil
}
