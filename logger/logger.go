// Package logger builds the zap loggers used by the command line tool.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a development-style logger without timestamps. If `verbose` is false,
// debug messages are dropped.
func New(verbose bool) (*zap.Logger, error) {
	lc := zap.NewDevelopmentConfig()
	lc.EncoderConfig.TimeKey = ""
	if !verbose {
		lc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return lc.Build()
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
