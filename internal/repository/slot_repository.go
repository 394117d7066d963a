package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

type SlotRepository interface {
	// Create persists a slot (terminal configuration).
	Create(ctx context.Context, slot *model.TimeSlot) error
	// GetByID finds a slot by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	// ListByGateRange returns a gate's slots overlapping [from, to).
	ListByGateRange(ctx context.Context, gateID uuid.UUID, from, to time.Time, limit, offset int) ([]model.TimeSlot, int64, error)
	// ListOpen returns a gate's slots in [from, to) with free capacity left.
	ListOpen(ctx context.Context, gateID uuid.UUID, from, to time.Time, limit, offset int) ([]model.TimeSlot, int64, error)
}

// Slot occupancy is deliberately absent here: current_bookings is mutated
// only by the capacity ledger.
type GormSlotRepository struct {
	db *gorm.DB
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

func (r *GormSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *GormSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormSlotRepository) ListByGateRange(
	ctx context.Context,
	gateID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.TimeSlot, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("gate_id = ?", gateID).
		Where("starts_at < ? AND ends_at > ?", to, from)

	return r.page(q, limit, offset)
}

func (r *GormSlotRepository) ListOpen(
	ctx context.Context,
	gateID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.TimeSlot, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("gate_id = ?", gateID).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Where("current_bookings < max_capacity")

	return r.page(q, limit, offset)
}

func (r *GormSlotRepository) page(q *gorm.DB, limit, offset int) ([]model.TimeSlot, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var slots []model.TimeSlot
	if err := q.Order("starts_at ASC").Find(&slots).Error; err != nil {
		return nil, 0, err
	}

	return slots, total, nil
}
