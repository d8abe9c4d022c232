package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables and unique indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&App{}, &Wallet{})
}
