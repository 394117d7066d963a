package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusConsumed  BookingStatus = "CONSUMED"
)

// IsTerminal reports whether no further status change is allowed.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusConsumed:
		return true
	}
	return false
}

// bookings — one reservation unit against a time slot while non-terminal.
// The ID is the opaque reference handed to the carrier and is safe to
// expose as the QR payload. Rows are never deleted; rejected and cancelled
// bookings are retained as audit artifacts.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	SlotID    uuid.UUID `gorm:"type:uuid;not null;index"`
	GateID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TruckID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CarrierID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index"`

	// Assigned on CONFIRMED; derived from the booking identity.
	QRCode string `gorm:"type:varchar(64)"`

	// Content hash submitted to the notarization ledger; set at commit time
	// of the transition that triggered notarization.
	NotarizationHash string `gorm:"type:varchar(64)"`

	CancelledAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Slot    *TimeSlot `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Gate    *Gate     `gorm:"foreignKey:GateID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Truck   *Truck    `gorm:"foreignKey:TruckID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Carrier *Carrier  `gorm:"foreignKey:CarrierID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User    *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// QRPayload derives the gate pass payload from the booking identity.
// No external randomness: the identity itself is the payload.
func (b *Booking) QRPayload() string {
	return "PGQR-" + b.ID.String()
}
