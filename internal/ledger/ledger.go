package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/portgate/internal/model"
)

var (
	// ErrSlotNotFound - the slot reference is invalid.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotFull - the slot has no reservation units left.
	ErrSlotFull = errors.New("slot capacity exhausted")
	// ErrUnderflow - a release would drive the counter below zero. This
	// indicates an internal consistency problem and is never swallowed.
	ErrUnderflow = errors.New("slot occupancy underflow")
)

// Occupancy is the counter state right after a ledger mutation.
type Occupancy struct {
	Current int
	Max     int
}

// Load is Current/Max; the state machine turns load >= 0.90 into a
// capacity alert, the ledger itself carries no such policy.
func (o Occupancy) Load() float64 {
	if o.Max <= 0 {
		return 0
	}
	return float64(o.Current) / float64(o.Max)
}

// Ledger is the only component allowed to mutate slot occupancy. It knows
// slot identities, never bookings.
//
// Both mutations are single conditional UPDATE statements. Reading the
// counter first and writing when the check passes is a race (two callers
// pass the check before either increments) and must not be reintroduced.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Reserve takes one reservation unit if any is free. Returns the
// post-increment occupancy on success, ErrSlotFull (with the current
// occupancy) when the slot is at capacity.
func (l *Ledger) Reserve(ctx context.Context, slotID uuid.UUID) (Occupancy, error) {
	return l.reserve(ctx, l.db, slotID)
}

// Release returns one reservation unit. The decrement is guarded so the
// counter can never go below zero; a guarded miss on an existing slot is
// surfaced as ErrUnderflow.
func (l *Ledger) Release(ctx context.Context, slotID uuid.UUID) error {
	return l.release(ctx, l.db, slotID)
}

// ReleaseTx is Release running inside the caller's transaction, so a
// booking status commit and its release land atomically.
func (l *Ledger) ReleaseTx(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) error {
	return l.release(ctx, tx, slotID)
}

func (l *Ledger) reserve(ctx context.Context, db *gorm.DB, slotID uuid.UUID) (Occupancy, error) {
	res := db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("id = ? AND current_bookings < max_capacity", slotID).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings + 1"))
	if res.Error != nil {
		return Occupancy{}, fmt.Errorf("reserve slot %s: %w", slotID, res.Error)
	}

	occ, err := l.occupancy(ctx, db, slotID)
	if err != nil {
		return Occupancy{}, err
	}

	if res.RowsAffected == 0 {
		return occ, ErrSlotFull
	}
	return occ, nil
}

func (l *Ledger) release(ctx context.Context, db *gorm.DB, slotID uuid.UUID) error {
	res := db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("id = ? AND current_bookings > 0", slotID).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings - 1"))
	if res.Error != nil {
		return fmt.Errorf("release slot %s: %w", slotID, res.Error)
	}

	if res.RowsAffected == 0 {
		if _, err := l.occupancy(ctx, db, slotID); err != nil {
			return err
		}
		return fmt.Errorf("release slot %s: %w", slotID, ErrUnderflow)
	}
	return nil
}

func (l *Ledger) occupancy(ctx context.Context, db *gorm.DB, slotID uuid.UUID) (Occupancy, error) {
	var slot model.TimeSlot
	err := db.WithContext(ctx).
		Select("id", "current_bookings", "max_capacity").
		First(&slot, "id = ?", slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Occupancy{}, ErrSlotNotFound
	}
	if err != nil {
		return Occupancy{}, fmt.Errorf("read slot %s: %w", slotID, err)
	}
	return Occupancy{Current: slot.CurrentBookings, Max: slot.MaxCapacity}, nil
}
