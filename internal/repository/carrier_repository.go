package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

type CarrierRepository interface {
	Create(ctx context.Context, carrier *model.Carrier) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Carrier, error)
	List(ctx context.Context) ([]model.Carrier, error)
}

type GormCarrierRepository struct {
	db *gorm.DB
}

func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

func (r *GormCarrierRepository) Create(ctx context.Context, carrier *model.Carrier) error {
	return r.db.WithContext(ctx).Create(carrier).Error
}

func (r *GormCarrierRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Carrier, error) {
	var c model.Carrier
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCarrierRepository) List(ctx context.Context) ([]model.Carrier, error) {
	var carriers []model.Carrier
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&carriers).Error
	if err != nil {
		return nil, err
	}
	return carriers, nil
}
