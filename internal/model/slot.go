package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// time_slots — a bounded admission window at a gate.
//
// CurrentBookings is owned exclusively by the capacity ledger: it is only
// ever changed through the ledger's conditional increment/decrement, never
// through application-level reads followed by writes.
type TimeSlot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	GateID uuid.UUID `gorm:"type:uuid;not null;index"`

	StartsAt time.Time `gorm:"not null;index"`
	EndsAt   time.Time `gorm:"not null"`

	MaxCapacity     int `gorm:"not null"`
	CurrentBookings int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Gate *Gate `gorm:"foreignKey:GateID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (s *TimeSlot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Remaining reports how many reservation units are still free.
func (s *TimeSlot) Remaining() int {
	return s.MaxCapacity - s.CurrentBookings
}

// Load is the occupancy ratio after the last ledger mutation.
func (s *TimeSlot) Load() float64 {
	if s.MaxCapacity <= 0 {
		return 0
	}
	return float64(s.CurrentBookings) / float64(s.MaxCapacity)
}
