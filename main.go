package main

import (
	"log"
	"time"

	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/services"
	"github.com/robfig/cron/v3"
)

func main() {
	// Basic logging
	log.Println("Starting PathLab API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.LabTest{},
		&models.Profile{},
		&models.Appointment{},
		&models.ResetToken{},
		&models.Feedback{},
		&models.Contact{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize services
	services.InitMailer(cfg)
	services.InitPaymentGateway(cfg)
	if _, err := services.InitReportStore(cfg); err != nil {
		log.Fatalf("Failed to initialize report store: %v", err)
	}

	// Expired reset tokens are swept hourly
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		cutoff := time.Now().Add(-models.ResetTokenTTL)
		result := db.Where("created_at < ?", cutoff).Delete(&models.ResetToken{})
		if result.Error != nil {
			log.Printf("Reset token sweep failed: %v", result.Error)
		} else if result.RowsAffected > 0 {
			log.Printf("Reset token sweep removed %d expired tokens", result.RowsAffected)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reset token sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := SetupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
