package buildscript

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface the script runner requires. *zap.Logger
// satisfies it; the runner falls back to zap.L() when none is set.
type Logger interface {
	Log(level zapcore.Level, msg string, fields ...zap.Field)
}
