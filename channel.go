package buildscript

import "go.uber.org/zap/zapcore"

// ChannelKind selects which of the two process streams a record goes to.
type ChannelKind int

const (
	// ChannelPlain passes bytes through to the diagnostic stream unmodified.
	ChannelPlain ChannelKind = iota
	// ChannelDirective prepends Marker and escapes embedded line breaks so
	// the build tool sees exactly one directive per record.
	ChannelDirective
)

// ChannelFor routes warnings and the error family to the directive channel.
// Any other level, custom ones included, falls back to the plain channel.
func ChannelFor(level zapcore.Level) ChannelKind {
	switch level {
	case zapcore.WarnLevel, zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return ChannelDirective
	default:
		return ChannelPlain
	}
}
