package config

import (
	"log"
	"os"

	"go.uber.org/zap"
)

// Log is the global structured logger. Side-effect failures (cache, email,
// notifications) go through this so they never surface to API clients.
var Log *zap.SugaredLogger

// InitLogger builds the zap logger. Production config when APP_ENV=production,
// human-readable development config otherwise.
func InitLogger() {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	Log = zapLogger.Sugar()
}
