package seeders

import (
	"context"
	"errors"

	"festgo.app/configs/configslog"
	"festgo.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedCategories creates the default event categories, skipping any that
// already exist.
func SeedCategories(db *gorm.DB) error {
	ctx := models.ContextWithUserID(context.Background(), SystemUserID)

	categoriesToSeed := []models.Category{
		{Name: "Conference", Description: "Multi-track professional conferences", Icon: "mic", Color: "#2563EB"},
		{Name: "Workshop", Description: "Hands-on training sessions", Icon: "tool", Color: "#16A34A"},
		{Name: "Concert", Description: "Live music performances", Icon: "music", Color: "#DB2777"},
		{Name: "Festival", Description: "Multi-day open-air festivals", Icon: "sun", Color: "#EA580C"},
		{Name: "Meetup", Description: "Community get-togethers", Icon: "users", Color: "#7C3AED"},
		{Name: "Exhibition", Description: "Trade shows and expos", Icon: "layout", Color: "#0891B2"},
	}

	var createdCount int
	var errorOccurred bool

	for _, categoryToSeed := range categoriesToSeed {
		var existing models.Category
		result := db.Where("name = ?", categoryToSeed.Name).First(&existing)
		if result.Error == nil {
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Category lookup failed",
				zap.String("name", categoryToSeed.Name), zap.Error(result.Error))
			errorOccurred = true
			continue
		}

		categoryToSeed.IsActive = true
		if err := db.WithContext(ctx).Create(&categoryToSeed).Error; err != nil {
			configslog.Log.Error("Category could not be created",
				zap.String("name", categoryToSeed.Name), zap.Error(err))
			errorOccurred = true
			continue
		}
		createdCount++
	}

	if errorOccurred {
		return errors.New("at least one category failed to seed")
	}
	if createdCount > 0 {
		configslog.SLog.Infof("%d categories seeded.", createdCount)
	} else {
		configslog.SLog.Info("All default categories already present.")
	}
	return nil
}
