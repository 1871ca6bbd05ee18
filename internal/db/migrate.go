package db

import "whaletrack/internal/models"

func AutoMigrate(db *DB) error {
	return db.Gorm.AutoMigrate(
		&models.RunSnapshot{},
	)
}
