package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// carriers — trucking companies that request gate slots.
type Carrier struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`
	VAT  string `gorm:"type:varchar(32);uniqueIndex"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Trucks []Truck `gorm:"foreignKey:CarrierID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *Carrier) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// trucks
type Truck struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CarrierID uuid.UUID `gorm:"type:uuid;not null;index"`

	Plate string `gorm:"type:varchar(16);not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Carrier *Carrier `gorm:"foreignKey:CarrierID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (t *Truck) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
