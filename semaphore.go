package buildscript

// Semaphore is a one-shot gate: dependents Wait on it, the owning task
// Releases it exactly once when done.
type Semaphore struct {
	ch chan struct{}
}

func NewSemaphore() *Semaphore {
	return &Semaphore{
		ch: make(chan struct{}),
	}
}

func (s *Semaphore) Release() {
	close(s.ch)
}

func (s *Semaphore) Wait() {
	<-s.ch
}
