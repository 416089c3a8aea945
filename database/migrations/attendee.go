package migrations

import (
	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateAttendeeTables(db *gorm.DB) error {
	err := db.AutoMigrate(&models.Attendee{}, &models.CheckInLog{})
	if err != nil {
		configslog.Log.Error("Failed to migrate attendees & check_in_logs tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Attendees & check_in_logs tables migrated successfully")
	return nil
}
