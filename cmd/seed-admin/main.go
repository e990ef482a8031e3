package main

import (
	"context"
	"os"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Seeds the first admin user on a fresh install. Idempotent: exits quietly if
// the username already exists.
func main() {
	_ = godotenv.Load()
	logger := config.GetLogger()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.Error("ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if err := models.AutoMigrate(); err != nil {
		logger.WithError(err).Error("migration failed")
		os.Exit(1)
	}

	ctx := context.Background()
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		logger.WithError(err).Error("lookup failed")
		os.Exit(1)
	}
	if count > 0 {
		logger.WithFields(logrus.Fields{"username": username}).Info("admin user already exists")
		return
	}

	user, err := models.CreateUser(ctx, username, password, "Administrator", "admin")
	if err != nil {
		logger.WithError(err).Error("create admin failed")
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{"username": user.Username, "id": user.ID}).Info("admin user created")
}
