package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is supplied by the identity provider with every call into the core;
// the core trusts it and performs no credential verification itself.
type Role string

const (
	RoleCarrier  Role = "carrier"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"

	// RoleGate identifies gate devices, never human users. Inside the core
	// it is the actor the passage validator uses for the consume transition.
	RoleGate Role = "gate"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email       string `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(255)"`

	Role Role `gorm:"type:varchar(32);not null;index"`

	// Set for carrier users only; scopes ownership checks.
	CarrierID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Carrier *Carrier `gorm:"foreignKey:CarrierID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
