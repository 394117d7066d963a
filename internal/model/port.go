package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ports
type Port struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`
	Code string `gorm:"type:varchar(16);not null;uniqueIndex"` // UN/LOCODE, e.g. "NLRTM"

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Terminals []Terminal `gorm:"foreignKey:PortID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *Port) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// terminals
type Terminal struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	PortID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Port  *Port  `gorm:"foreignKey:PortID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Gates []Gate `gorm:"foreignKey:TerminalID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (t *Terminal) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
