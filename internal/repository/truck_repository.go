package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

type TruckRepository interface {
	Create(ctx context.Context, truck *model.Truck) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Truck, error)
	ListByCarrier(ctx context.Context, carrierID uuid.UUID) ([]model.Truck, error)
}

type GormTruckRepository struct {
	db *gorm.DB
}

func NewGormTruckRepository(db *gorm.DB) *GormTruckRepository {
	return &GormTruckRepository{db: db}
}

func (r *GormTruckRepository) Create(ctx context.Context, truck *model.Truck) error {
	return r.db.WithContext(ctx).Create(truck).Error
}

func (r *GormTruckRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Truck, error) {
	var t model.Truck
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTruckRepository) ListByCarrier(ctx context.Context, carrierID uuid.UUID) ([]model.Truck, error) {
	var trucks []model.Truck
	err := r.db.WithContext(ctx).
		Where("carrier_id = ?", carrierID).
		Order("plate ASC").
		Find(&trucks).Error
	if err != nil {
		return nil, err
	}
	return trucks, nil
}
