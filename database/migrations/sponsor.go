package migrations

import (
	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateSponsorTables(db *gorm.DB) error {
	err := db.AutoMigrate(&models.SponsorTier{}, &models.Sponsor{}, &models.Sponsorship{}, &models.SponsorBenefit{})
	if err != nil {
		configslog.Log.Error("Failed to migrate sponsor_tiers, sponsors, sponsorships & sponsor_benefits tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Sponsor tiers, sponsors, sponsorships & sponsor_benefits tables migrated successfully")
	return nil
}
