package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/notification"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/quickcart/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAlertRepository implements notification.AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds a seller alert by its ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.SellerAlert, error) {
	var model models.SellerAlertModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save saves a seller alert (insert or update)
func (r *GormAlertRepository) Save(ctx context.Context, alert *notification.SellerAlert) error {
	model := models.SellerAlertModelFromDomain(alert)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindOpen lists alerts not yet acknowledged, newest first
func (r *GormAlertRepository) FindOpen(ctx context.Context) ([]notification.SellerAlert, error) {
	var alertModels []models.SellerAlertModel
	if err := r.db.WithContext(ctx).
		Where("acknowledged = ?", false).
		Order("created_at DESC").
		Find(&alertModels).Error; err != nil {
		return nil, err
	}
	return toDomainAlerts(alertModels), nil
}

// FindByOrder lists all alerts for one order, newest first
func (r *GormAlertRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]notification.SellerAlert, error) {
	var alertModels []models.SellerAlertModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&alertModels).Error; err != nil {
		return nil, err
	}
	return toDomainAlerts(alertModels), nil
}

func toDomainAlerts(alertModels []models.SellerAlertModel) []notification.SellerAlert {
	alerts := make([]notification.SellerAlert, len(alertModels))
	for i, model := range alertModels {
		alerts[i] = *model.ToDomain()
	}
	return alerts
}

var _ notification.AlertRepository = (*GormAlertRepository)(nil)
