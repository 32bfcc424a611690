// Package telemetry builds the zap.Logger the rest of this module logs
// through. It exists so the composition root (cmd/lightproof) has one
// place that turns a verbosity flag into a configured logger, the same
// way erigon's own command tree wires --log.console.verbosity into its
// logger before anything else starts.
package telemetry

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the subset of zap's levels exposed on the CLI.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// New builds a console-encoded zap.Logger at the given level. Unknown
// levels fall back to info rather than failing the whole command.
func New(level Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func parseLevel(level Level) zapcore.Level {
	switch strings.ToLower(string(level)) {
	case string(LevelDebug):
		return zapcore.DebugLevel
	case string(LevelWarn):
		return zapcore.WarnLevel
	case string(LevelError):
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
