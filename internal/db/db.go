package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"counsel/internal/config"
	"counsel/internal/entry"
	"counsel/internal/profile"
	"counsel/internal/user"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user model
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate entries and profiles
	if err := db.AutoMigrate(&entry.Entry{}, &profile.UserProfile{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
