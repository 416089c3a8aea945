package seeders

import (
	"errors"
	"os"

	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SystemUserID is the well-known ID of the seeded system account; seeders
// attribute their rows to it.
const SystemUserID uint = 1

// SeedSystemUser creates or refreshes the system account. Email and password
// come from the environment so deployments never ship the defaults.
func SeedSystemUser(db *gorm.DB) error {
	email := os.Getenv("SYSTEM_USER_EMAIL")
	if email == "" {
		email = "system@festgo.app"
	}
	password := os.Getenv("SYSTEM_USER_PASSWORD")
	if password == "" {
		password = "change-me-now"
		configslog.SLog.Warn("SYSTEM_USER_PASSWORD not set, seeding the default password.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("System user password could not be hashed", zap.Error(err))
		return err
	}

	var existing models.User
	result := db.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		existing.PasswordHash = string(hashed)
		existing.IsStaff = true
		existing.IsSystem = true
		existing.IsActive = true
		if err := db.Save(&existing).Error; err != nil {
			configslog.Log.Error("System user could not be updated", zap.Error(err))
			return err
		}
		configslog.SLog.Infof("System user refreshed (ID: %d).", existing.ID)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("System user lookup failed", zap.Error(result.Error))
		return result.Error
	}

	user := models.User{
		Name:         "System",
		Email:        email,
		PasswordHash: string(hashed),
		IsStaff:      true,
		IsSystem:     true,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		configslog.Log.Error("System user could not be created", zap.Error(err))
		return err
	}
	configslog.SLog.Infof("System user created (ID: %d).", user.ID)
	return nil
}
