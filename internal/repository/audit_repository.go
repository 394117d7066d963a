package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

type AuditRepository interface {
	// Append writes one immutable audit record.
	Append(ctx context.Context, entry *model.AuditEntry) error
	// ListByEntity returns the trail for one entity, oldest first.
	ListByEntity(ctx context.Context, entityID string, limit int) ([]model.AuditEntry, error)
	// ListRecent returns the newest records across all entities.
	ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormAuditRepository) ListByEntity(ctx context.Context, entityID string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormAuditRepository) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
