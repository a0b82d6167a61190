package buildscript

import (
	"io"
	"os"
	"sync"
)

// Stream wraps an output writer with a mutex. A single logical emission
// (marker plus escaped content) takes several underlying writes, so writers
// sharing a stream hold its lock for the duration of one call to keep
// records contiguous.
type Stream struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStream(w io.Writer) *Stream {
	return &Stream{w: w}
}

var (
	// stdoutStream is the directive-bearing stream: lines starting with
	// Marker are interpreted by the build tool.
	stdoutStream = NewStream(os.Stdout)
	// stderrStream is the diagnostic stream, only visible in verbose builds.
	stderrStream = NewStream(os.Stderr)
)

func (s *Stream) lock()   { s.mu.Lock() }
func (s *Stream) unlock() { s.mu.Unlock() }

// write forwards to the underlying writer. Callers must hold the lock.
func (s *Stream) write(p []byte) error {
	_, err := s.w.Write(p)
	return err
}

func (s *Stream) sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sy, ok := s.w.(interface{ Sync() error }); ok {
		return sy.Sync()
	}
	return nil
}
