package model

import "gorm.io/gorm"

// AutoMigrate migrates all entities of the gate booking core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Port{},
		&Terminal{},
		&Gate{},
		&TimeSlot{},
		&Carrier{},
		&Truck{},
		&User{},
		&Booking{},
		&AuditEntry{},
	)
}
