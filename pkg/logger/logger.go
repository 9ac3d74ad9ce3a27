package logger

import (
	"github.com/hexrift/nft-catalog/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
}

// NewLogger initializes a new zap logger;
// based on environment it switches to console or json output.
func NewLogger() *Logger {
	env := utils.GetEnv("GO_ENV", "development")

	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "ts"
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err := cfg.Build()
	if err != nil {
		panic("[LOGGER] failed to initialize ->" + err.Error())
	}

	return &Logger{
		log.Sugar(),
	}
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
