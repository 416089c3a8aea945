package database

import (
	"festgo.app/configs/configslog"
	"festgo.app/database/migrations"
	"festgo.app/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Initialize runs migrations and seeders inside one transaction so a half
// initialized schema never survives a failure.
func Initialize(db *gorm.DB, migrate bool, seed bool) {
	if !migrate && !seed {
		configslog.SLog.Info("Neither migrate nor seed requested, nothing to do.")
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Fatal("Could not begin database transaction", zap.Error(tx.Error))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Fatal("Database initialization panicked", zap.Any("panic_info", r))
		} else if err := tx.Error; err != nil && err != gorm.ErrInvalidTransaction {
			configslog.SLog.Warn("Rolling back after initialization error.", zap.Error(err))
			rbErr := tx.Rollback().Error
			if rbErr != nil && rbErr != gorm.ErrInvalidTransaction {
				configslog.Log.Error("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if migrate {
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migration failed", zap.Error(err))
			return
		}
	} else {
		configslog.SLog.Info("Migrate flag not set, skipping migrations.")
	}

	if seed {
		if err := CheckAndRunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding failed", zap.Error(err))
			return
		}
	} else {
		configslog.SLog.Info("Seed flag not set, skipping seeders.")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Error = err
		configslog.Log.Error("Commit failed", zap.Error(err))
		return
	}

	configslog.SLog.Info("Database initialization completed successfully")
}

// RunMigrationsInOrder migrates the aggregates in dependency order: users
// first, then the event catalogue, then everything hanging off events.
func RunMigrationsInOrder(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"users", migrations.MigrateUsersTable},
		{"events", migrations.MigrateEventTables},
		{"tickets", migrations.MigrateTicketTables},
		{"attendees", migrations.MigrateAttendeeTables},
		{"surveys", migrations.MigrateSurveyTables},
		{"sponsors", migrations.MigrateSponsorTables},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> Running %s migrations...", step.name)
		if err := step.run(db); err != nil {
			configslog.Log.Error("Migration step failed", zap.String("step", step.name), zap.Error(err))
			return err
		}
	}
	configslog.SLog.Info("All migrations ran successfully.")
	return nil
}

// CheckAndRunSeeders runs every idempotent seeder. The system user must come
// first so later seeds can attribute their rows to it.
func CheckAndRunSeeders(db *gorm.DB) error {
	if err := seeders.SeedSystemUser(db); err != nil {
		configslog.Log.Error("System user seed failed", zap.Error(err))
		return err
	}
	if err := seeders.SeedCategories(db); err != nil {
		configslog.Log.Error("Category seed failed", zap.Error(err))
		return err
	}
	if err := seeders.SeedSponsorTiers(db); err != nil {
		configslog.Log.Error("Sponsor tier seed failed", zap.Error(err))
		return err
	}
	configslog.SLog.Info("All seeders ran successfully.")
	return nil
}
