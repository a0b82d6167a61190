package buildscript

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core for build scripts: warnings and errors come out on
// stdout as single `cargo::warning=` directives, everything else goes to
// stderr where only verbose builds show it. Each record is emitted through
// its own DirectiveWriter instance, closed once the record is written, which
// keeps the encoder's trailing newline a real newline while embedded ones
// are escaped.
type Core struct {
	zapcore.LevelEnabler

	enc        zapcore.Encoder
	directive  *Stream
	diagnostic *Stream
}

type CoreOption func(*Core)

// WithStreams redirects both channels, for tests and embedders that capture
// build output. The stream assignment itself is not user configuration:
// directives belong on the first writer, diagnostics on the second.
func WithStreams(directive, diagnostic io.Writer) CoreOption {
	return func(c *Core) {
		c.directive = NewStream(directive)
		c.diagnostic = NewStream(diagnostic)
	}
}

// WithLevel sets the minimum enabled level. Defaults to Debug: the build
// tool already hides the diagnostic stream unless asked to be verbose.
func WithLevel(enab zapcore.LevelEnabler) CoreOption {
	return func(c *Core) {
		c.LevelEnabler = enab
	}
}

// WithEncoder replaces the default console encoder.
func WithEncoder(enc zapcore.Encoder) CoreOption {
	return func(c *Core) {
		c.enc = enc
	}
}

func NewCore(opts ...CoreOption) *Core {
	c := &Core{
		LevelEnabler: zapcore.DebugLevel,
		enc:          zapcore.NewConsoleEncoder(EncoderConfig()),
		directive:    stdoutStream,
		diagnostic:   stderrStream,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLogger returns a zap logger wired for build-script output. Typically
// installed process-wide: zap.ReplaceGlobals(buildscript.NewLogger()).
func NewLogger(opts ...CoreOption) *zap.Logger {
	return zap.New(NewCore(opts...))
}

// EncoderConfig follows build-log conventions: no timestamps, capital
// levels, single-line records.
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = zapcore.OmitKey
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.enc = c.enc.Clone()
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	// One transducer instance per record. WriteRecord resolves the trailing
	// newline the encoder appended without releasing the stream in between,
	// so concurrently logged records never garble each other.
	if ChannelFor(ent.Level) == ChannelDirective {
		_, err = NewDirectiveWriter(c.directive).WriteRecord(buf.Bytes())
		return err
	}

	_, err = NewPlainWriter(c.diagnostic).Write(buf.Bytes())
	return err
}

func (c *Core) Sync() error {
	return errors.Join(c.directive.sync(), c.diagnostic.sync())
}
