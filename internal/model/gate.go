package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gates — physical access points at a terminal where trucks enter/exit.
type Gate struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	TerminalID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(255);not null"`
	Lane string `gorm:"type:varchar(32)"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Terminal *Terminal  `gorm:"foreignKey:TerminalID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Slots    []TimeSlot `gorm:"foreignKey:GateID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (g *Gate) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
