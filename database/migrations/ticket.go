package migrations

import (
	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateTicketTables(db *gorm.DB) error {
	err := db.AutoMigrate(&models.TicketType{}, &models.DiscountCode{}, &models.Ticket{})
	if err != nil {
		configslog.Log.Error("Failed to migrate ticket_types, discount_codes & tickets tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Ticket types, discount codes & tickets tables migrated successfully")
	return nil
}
