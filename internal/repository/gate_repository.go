package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

type GateRepository interface {
	Create(ctx context.Context, gate *model.Gate) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Gate, error)
	ListByTerminal(ctx context.Context, terminalID uuid.UUID) ([]model.Gate, error)
}

type GormGateRepository struct {
	db *gorm.DB
}

func NewGormGateRepository(db *gorm.DB) *GormGateRepository {
	return &GormGateRepository{db: db}
}

func (r *GormGateRepository) Create(ctx context.Context, gate *model.Gate) error {
	return r.db.WithContext(ctx).Create(gate).Error
}

func (r *GormGateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Gate, error) {
	var g model.Gate
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GormGateRepository) ListByTerminal(ctx context.Context, terminalID uuid.UUID) ([]model.Gate, error) {
	var gates []model.Gate
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Order("name ASC").
		Find(&gates).Error
	if err != nil {
		return nil, err
	}
	return gates, nil
}
