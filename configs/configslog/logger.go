package configslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger, SLog the sugared variant of the same core.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

// InitLogger configures the package loggers. APP_ENV=production switches to
// the JSON production encoder; anything else gets the development console one.
func InitLogger() {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		panic("logger could not be initialized: " + err.Error())
	}

	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger flushes buffered log entries. Call via defer from main.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func init() {
	// Packages log during their own initialization; make sure a logger exists
	// even before main calls InitLogger.
	if Log == nil {
		InitLogger()
	}
}
