package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

// PortRepository covers the port/terminal reference data the gates hang off.
type PortRepository interface {
	CreatePort(ctx context.Context, port *model.Port) error
	CreateTerminal(ctx context.Context, terminal *model.Terminal) error
	GetPort(ctx context.Context, id uuid.UUID) (*model.Port, error)
	// ListPorts returns all ports with their terminals preloaded.
	ListPorts(ctx context.Context) ([]model.Port, error)
}

type GormPortRepository struct {
	db *gorm.DB
}

func NewGormPortRepository(db *gorm.DB) *GormPortRepository {
	return &GormPortRepository{db: db}
}

func (r *GormPortRepository) CreatePort(ctx context.Context, port *model.Port) error {
	return r.db.WithContext(ctx).Create(port).Error
}

func (r *GormPortRepository) CreateTerminal(ctx context.Context, terminal *model.Terminal) error {
	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *GormPortRepository) GetPort(ctx context.Context, id uuid.UUID) (*model.Port, error) {
	var p model.Port
	if err := r.db.WithContext(ctx).Preload("Terminals").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPortRepository) ListPorts(ctx context.Context) ([]model.Port, error) {
	var ports []model.Port
	err := r.db.WithContext(ctx).
		Preload("Terminals").
		Order("code ASC").
		Find(&ports).Error
	if err != nil {
		return nil, err
	}
	return ports, nil
}
