package database

import (
	"log"

	"github.com/geniusacademy/registration-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Needed so an order-code collision surfaces as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.ClassOffering{},
		&models.Registration{},
		&models.RegistrationClass{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	seedDefaultClasses(db)

	return db
}

// seedDefaultClasses installs the initial class offerings on first run.
// Admins manage them from there; the seed never overwrites edits.
func seedDefaultClasses(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.ClassOffering{}).Count(&count).Error; err != nil {
		log.Printf("[Database] class count failed, skipping seed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	defaults := []models.ClassOffering{
		{ClassID: "sat-morning", Title: "Saturday Morning", Price: 79.99, MaxSeats: 14, StatusOverride: models.OverrideAuto},
		{ClassID: "sat-afternoon", Title: "Saturday Afternoon", Price: 79.99, MaxSeats: 1, StatusOverride: models.OverrideAuto},
		{ClassID: "sun-morning", Title: "Sunday Morning", Price: 79.99, MaxSeats: 14, StatusOverride: models.OverrideAuto},
		{ClassID: "sun-afternoon", Title: "Sunday Afternoon", Price: 79.99, MaxSeats: 14, StatusOverride: models.OverrideAuto},
	}
	if err := db.Create(&defaults).Error; err != nil {
		log.Printf("[Database] failed to seed default classes: %v", err)
		return
	}
	log.Printf("[Database] seeded %d default classes", len(defaults))
}
