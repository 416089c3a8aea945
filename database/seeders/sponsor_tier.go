package seeders

import (
	"context"
	"errors"

	"festgo.app/configs/configslog"
	"festgo.app/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// SeedSponsorTiers creates the default sponsorship levels, skipping any that
// already exist.
func SeedSponsorTiers(db *gorm.DB) error {
	ctx := models.ContextWithUserID(context.Background(), SystemUserID)

	tiersToSeed := []models.SponsorTier{
		{
			Name:            "Platinum",
			Description:     "Top billing across the whole event",
			MinContribution: dec(50000),
			MaxContribution: nil,
			Benefits: "Logo on main stage\nKeynote speaking slot\nPremium booth space\n" +
				"Full-page program ad\nHomepage feature",
			PriorityLevel:        40,
			LogoSize:             "large",
			HomepageFeatured:     true,
			SpeakingOpportunity:  true,
			BoothSpace:           true,
			ComplimentaryTickets: 20,
			VIPTickets:           10,
			Color:                "#E5E4E2",
			DisplayOrder:         1,
		},
		{
			Name:                 "Gold",
			Description:          "High visibility sponsorship",
			MinContribution:      dec(25000),
			MaxContribution:      decPtr(49999),
			Benefits:             "Logo on stage screens\nBooth space\nHalf-page program ad",
			PriorityLevel:        30,
			LogoSize:             "large",
			BoothSpace:           true,
			ComplimentaryTickets: 10,
			VIPTickets:           4,
			Color:                "#FFD700",
			DisplayOrder:         2,
		},
		{
			Name:                 "Silver",
			Description:          "Mid-level sponsorship",
			MinContribution:      dec(10000),
			MaxContribution:      decPtr(24999),
			Benefits:             "Logo in program\nShared booth space",
			PriorityLevel:        20,
			LogoSize:             "medium",
			BoothSpace:           true,
			ComplimentaryTickets: 5,
			Color:                "#C0C0C0",
			DisplayOrder:         3,
		},
		{
			Name:                 "Bronze",
			Description:          "Entry-level sponsorship",
			MinContribution:      dec(2500),
			MaxContribution:      decPtr(9999),
			Benefits:             "Logo on website",
			PriorityLevel:        10,
			LogoSize:             "small",
			ComplimentaryTickets: 2,
			Color:                "#CD7F32",
			DisplayOrder:         4,
		},
	}

	var createdCount int
	var errorOccurred bool

	for _, tierToSeed := range tiersToSeed {
		var existing models.SponsorTier
		result := db.Where("name = ?", tierToSeed.Name).First(&existing)
		if result.Error == nil {
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Sponsor tier lookup failed",
				zap.String("name", tierToSeed.Name), zap.Error(result.Error))
			errorOccurred = true
			continue
		}

		tierToSeed.IsActive = true
		if err := db.WithContext(ctx).Create(&tierToSeed).Error; err != nil {
			configslog.Log.Error("Sponsor tier could not be created",
				zap.String("name", tierToSeed.Name), zap.Error(err))
			errorOccurred = true
			continue
		}
		createdCount++
	}

	if errorOccurred {
		return errors.New("at least one sponsor tier failed to seed")
	}
	if createdCount > 0 {
		configslog.SLog.Infof("%d sponsor tiers seeded.", createdCount)
	} else {
		configslog.SLog.Info("All default sponsor tiers already present.")
	}
	return nil
}
