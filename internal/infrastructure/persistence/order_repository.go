package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/quickcart/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// offerableStatuses are the statuses from which an order may enter OFFERED:
// fresh orders, parked orders retried by an operator, and expired offers
// being re-dispatched.
var offerableStatuses = []string{
	dispatch.OrderStatusReadyForDispatch.String(),
	dispatch.OrderStatusUnassigned.String(),
	dispatch.OrderStatusOffered.String(),
}

// GormOrderRepository implements dispatch.OrderRepository using GORM.
// The state transitions that arbitrate races (MarkOffered, ClaimForPartner,
// ReleaseExpired) are single conditional UPDATEs; the database decides who
// wins via the row lock, and RowsAffected reports the verdict.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds a dispatch order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Order, error) {
	var model models.DispatchOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds a dispatch order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*dispatch.Order, error) {
	var model models.DispatchOrderModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save saves a dispatch order (insert or update)
func (r *GormOrderRepository) Save(ctx context.Context, order *dispatch.Order) error {
	model := models.DispatchOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Save(model).Error
}

// MarkOffered transitions the order to OFFERED with the given deadline,
// provided the row still carries expectedAttempt and a status from which
// OFFERED is reachable. Returns false without error when the guard failed.
func (r *GormOrderRepository) MarkOffered(ctx context.Context, orderID uuid.UUID, expectedAttempt int, newAttempt int, deadline time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DispatchOrderModel{}).
		Where("id = ? AND dispatch_attempt = ? AND status IN ?", orderID, expectedAttempt, offerableStatuses).
		Updates(map[string]interface{}{
			"status":            dispatch.OrderStatusOffered.String(),
			"dispatch_attempt":  newAttempt,
			"dispatch_deadline": deadline,
			"updated_at":        time.Now(),
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClaimForPartner atomically assigns the order to the partner, provided the
// row is still OFFERED at exactly the given attempt with a live deadline.
// Exactly one concurrent caller can match the guard; everyone else gets false.
func (r *GormOrderRepository) ClaimForPartner(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.DispatchOrderModel{}).
		Where("id = ? AND status = ? AND dispatch_attempt = ? AND dispatch_deadline > ?",
			orderID, dispatch.OrderStatusOffered.String(), dispatchAttempt, now).
		Updates(map[string]interface{}{
			"status":              dispatch.OrderStatusAssigned.String(),
			"assigned_partner_id": partnerID,
			"dispatch_deadline":   nil,
			"assigned_at":         now,
			"updated_at":          now,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseExpired transitions OFFERED at the given attempt to UNASSIGNED.
// Returns false when a claim won in the meantime or a re-dispatch already
// bumped the attempt.
func (r *GormOrderRepository) ReleaseExpired(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DispatchOrderModel{}).
		Where("id = ? AND status = ? AND dispatch_attempt = ?",
			orderID, dispatch.OrderStatusOffered.String(), dispatchAttempt).
		Updates(map[string]interface{}{
			"status":            dispatch.OrderStatusUnassigned.String(),
			"dispatch_deadline": nil,
			"updated_at":        time.Now(),
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindUnassigned lists orders parked for operator handling, oldest first
func (r *GormOrderRepository) FindUnassigned(ctx context.Context) ([]dispatch.Order, error) {
	var orderModels []models.DispatchOrderModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", dispatch.OrderStatusUnassigned.String()).
		Order("updated_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]dispatch.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// FindOffered lists orders with an outstanding offer, soonest deadline first
func (r *GormOrderRepository) FindOffered(ctx context.Context) ([]dispatch.Order, error) {
	var orderModels []models.DispatchOrderModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", dispatch.OrderStatusOffered.String()).
		Order("dispatch_deadline ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]dispatch.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

var _ dispatch.OrderRepository = (*GormOrderRepository)(nil)
