package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit action type, coarse category of the recorded action.
type AuditActionType string

const (
	AuditTypeAccess   AuditActionType = "ACCESS"
	AuditTypeMutation AuditActionType = "MUTATION"
	AuditTypeSystem   AuditActionType = "SYSTEM"
)

// Audit actions emitted by the core.
const (
	AuditBookingCreated      = "BOOKING_CREATED"
	AuditBookingStatusChange = "BOOKING_STATUS_CHANGED"
	AuditCapacityAlert       = "CAPACITY_ALERT"
	AuditScanAttempted       = "SCAN_ATTEMPTED"
	AuditEntryGranted        = "ENTRY_GRANTED"
	AuditGatePassage         = "GATE_PASSAGE"
	AuditNotarySubmitted     = "NOTARIZATION_SUBMITTED"
	AuditNotaryFailed        = "NOTARIZATION_FAILED"
	AuditSideEffectFailed    = "SIDE_EFFECT_FAILED"
)

// audit_entries — append-only. The core never updates or deletes rows here.
type AuditEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Actor      string          `gorm:"type:varchar(64);not null;index"`
	ActionType AuditActionType `gorm:"type:varchar(32);not null;index"`
	Action     string          `gorm:"type:varchar(64);not null;index"`

	EntityType string `gorm:"type:varchar(64);not null"`
	EntityID   string `gorm:"type:varchar(64);not null;index"`

	Details datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;index"`
}

func (e *AuditEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
