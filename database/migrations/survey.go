package migrations

import (
	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateSurveyTables(db *gorm.DB) error {
	err := db.AutoMigrate(&models.Survey{}, &models.SurveyQuestion{}, &models.SurveyResponse{})
	if err != nil {
		configslog.Log.Error("Failed to migrate surveys, survey_questions & survey_responses tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Surveys, survey_questions & survey_responses tables migrated successfully")
	return nil
}
