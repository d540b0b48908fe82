package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App modes recognized by New.
const (
	ProductionMode  = "production"
	DevelopmentMode = "development"
)

// New builds a zap logger for the given app mode. Production mode emits
// JSON with ISO8601 timestamps; anything else gets the colored console
// encoder for local development.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode == ProductionMode {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}
