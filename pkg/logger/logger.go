package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. JSON encoding is used in production;
// debug switches the level and enables the development encoder.
func New(json, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !json {
		cfg.Encoding = "console"
	}
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build()
}
