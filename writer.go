package buildscript

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// Marker is the literal prefix that makes the build tool treat a stdout line
// as a warning directive. The error directive is deliberately not used: it
// aborts the build, which is not always desired.
const Marker = "cargo::warning="

var marker = []byte(Marker)

type writerState int

const (
	// No bytes consumed yet, the marker still has to be emitted.
	stateInit writerState = iota
	// Marker emitted, nothing withheld.
	stateNormal
	// Marker emitted and the last consumed byte was a line break that is
	// withheld: either the record terminator (written verbatim on Close) or
	// an embedded break (escaped on the next Write).
	statePending
)

// DirectiveWriter emits one logical record as a single directive line.
//
// A record may arrive split across any number of Write calls; the output is
// byte-identical regardless of the split. Embedded LF and CR bytes are
// rewritten to `\n` and `\r` so a multi-line message cannot be parsed as
// several directives. Whether a trailing line break is embedded or the
// record terminator is unknowable until more bytes arrive, so it is withheld
// and resolved on the next Write or on Close. Callers must Close the writer
// on every exit path once the record is complete.
//
// A DirectiveWriter is not safe for concurrent use. Distinct writers sharing
// one Stream are: each Write emits under the stream lock, so concurrent
// records never interleave.
type DirectiveWriter struct {
	stream  *Stream
	state   writerState
	pending byte
	closed  bool
}

func NewDirectiveWriter(stream *Stream) *DirectiveWriter {
	return &DirectiveWriter{stream: stream}
}

// Write consumes the next chunk of the record. On success every input byte
// is accounted for: written, escaped, or withheld as the possible terminator.
// A failed Write poisons the record; retrying is unsafe because earlier
// bytes of the call may already have reached the stream.
func (w *DirectiveWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.stream.lock()
	defer w.stream.unlock()

	switch w.state {
	case stateInit:
		if err := w.stream.write(marker); err != nil {
			return 0, err
		}
	case statePending:
		// More bytes arrived, so the withheld break was embedded.
		if err := w.stream.write(escapeSpecial(w.pending)); err != nil {
			return 0, err
		}
	}
	w.state = stateNormal

	n := len(p)
	if last := p[n-1]; isSpecial(last) {
		p = p[:n-1]
		w.state = statePending
		w.pending = last
	}

	for {
		i := indexSpecial(p)
		if i < 0 {
			// Fast path: nothing left to escape, flush in one shot.
			if err := w.stream.write(p); err != nil {
				return 0, err
			}
			return n, nil
		}

		if err := w.stream.write(p[:i]); err != nil {
			return 0, err
		}
		if err := w.stream.write(escapeSpecial(p[i])); err != nil {
			return 0, err
		}
		p = p[i+1:]
	}
}

// WriteRecord emits the rest of a record in one exclusive acquisition of the
// stream. It is equivalent to Write(p) followed by Close, for callers that
// already hold the complete record: because the lock is not released between
// the body and the resolved terminator, concurrent records stay contiguous
// in the stream's byte order.
func (w *DirectiveWriter) WriteRecord(p []byte) (int, error) {
	w.stream.lock()
	defer w.stream.unlock()

	w.closed = true

	switch w.state {
	case stateInit:
		// A zero-byte record emits no bare marker line.
		if len(p) == 0 {
			return 0, nil
		}
		if err := w.stream.write(marker); err != nil {
			return 0, err
		}
	case statePending:
		if len(p) == 0 {
			// The withheld byte turned out to be the record terminator.
			err := w.stream.write([]byte{w.pending})
			w.state = stateNormal
			return 0, err
		}
		if err := w.stream.write(escapeSpecial(w.pending)); err != nil {
			return 0, err
		}
	}
	w.state = stateNormal

	n := len(p)
	if n == 0 {
		return 0, nil
	}

	var terminator []byte
	if last := p[n-1]; isSpecial(last) {
		terminator = p[n-1:]
		p = p[:n-1]
	}

	for {
		i := indexSpecial(p)
		if i < 0 {
			if err := w.stream.write(p); err != nil {
				return 0, err
			}
			break
		}

		if err := w.stream.write(p[:i]); err != nil {
			return 0, err
		}
		if err := w.stream.write(escapeSpecial(p[i])); err != nil {
			return 0, err
		}
		p = p[i+1:]
	}

	if terminator != nil {
		if err := w.stream.write(terminator); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Close resolves a withheld trailing line break: no further bytes can
// arrive, so it is the genuine record terminator and is written verbatim.
// The flush is best-effort, there is no caller left to report a failure to.
// Close is idempotent and always returns nil.
func (w *DirectiveWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.state == statePending {
		w.stream.lock()
		_ = w.stream.write([]byte{w.pending})
		w.stream.unlock()
		w.state = stateNormal
	}
	return nil
}

// Sync flushes the underlying stream when it supports it.
func (w *DirectiveWriter) Sync() error {
	return w.stream.sync()
}

// PlainWriter copies bytes to its stream unmodified. Nothing on the
// diagnostic stream is parsed as a directive, so no marker or escaping is
// needed.
type PlainWriter struct {
	stream *Stream
}

func NewPlainWriter(stream *Stream) *PlainWriter {
	return &PlainWriter{stream: stream}
}

func (w *PlainWriter) Write(p []byte) (int, error) {
	w.stream.lock()
	defer w.stream.unlock()

	if err := w.stream.write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *PlainWriter) Close() error {
	return nil
}

// Sync flushes the underlying stream when it supports it.
func (w *PlainWriter) Sync() error {
	return w.stream.sync()
}

// NewWriter returns the writer one record at the given level should be
// emitted through: a fresh DirectiveWriter over stdout for warnings and
// errors, the plain stderr pass-through for everything else. The directive
// writer must be closed when the record is complete.
func NewWriter(level zapcore.Level) io.WriteCloser {
	if ChannelFor(level) == ChannelDirective {
		return NewDirectiveWriter(stdoutStream)
	}
	return NewPlainWriter(stderrStream)
}

// NewWriterTo is NewWriter with an explicit channel kind and stream.
func NewWriterTo(kind ChannelKind, stream *Stream) io.WriteCloser {
	if kind == ChannelDirective {
		return NewDirectiveWriter(stream)
	}
	return NewPlainWriter(stream)
}
