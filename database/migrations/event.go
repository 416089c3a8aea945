package migrations

import (
	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateEventTables(db *gorm.DB) error {
	err := db.AutoMigrate(&models.Category{}, &models.Venue{}, &models.Event{})
	if err != nil {
		configslog.Log.Error("Failed to migrate categories, venues & events tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Categories, venues & events tables migrated successfully")
	return nil
}
