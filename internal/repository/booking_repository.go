package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *model.Booking) error
	// GetByID loads a booking without associations.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// GetDetailed loads a booking with slot, gate and truck preloaded.
	GetDetailed(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// ListByCarrier returns a carrier's bookings in a period, newest first.
	ListByCarrier(ctx context.Context, carrierID uuid.UUID, from, to time.Time, limit, offset int) ([]model.Booking, int64, error)
	// ListBySlot returns bookings referencing a slot, any status.
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]model.Booking, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Preload("Gate").
		Preload("Truck").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) ListByCarrier(
	ctx context.Context,
	carrierID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("carrier_id = ?", carrierID).
		Where("created_at >= ? AND created_at <= ?", from, to)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", slotID).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
