// Package configs bundles application configuration and re-exports the
// database handle so repositories and services depend on one import.
package configs

import (
	"os"

	"festgo.app/configs/configsdatabase"

	"gorm.io/gorm"
)

// GetDB returns the shared database connection.
func GetDB() *gorm.DB {
	return configsdatabase.GetDB()
}

// AppPort returns the HTTP listen address, ":3000" by default.
func AppPort() string {
	if p := os.Getenv("APP_PORT"); p != "" {
		return ":" + p
	}
	return ":3000"
}
