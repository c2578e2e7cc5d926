package worker

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("worker already running")
	ErrNotRunning     = errors.New("worker not running")
)

// Runner manages a single long-lived background goroutine with a
// start/stop lifecycle. Stop signals the loop through context
// cancellation and waits for it with a bounded timeout; a loop that
// does not exit in time is abandoned rather than blocking the caller.
type Runner struct {
	name string

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewRunner(name string) *Runner {
	return &Runner{name: name}
}

func (r *Runner) Name() string {
	return r.name
}

// Start launches run in its own goroutine. run must return when its
// context is cancelled.
func (r *Runner) Start(run func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.running = true

	go func() {
		defer close(done)
		run(ctx)
	}()

	return nil
}

// Stop cancels the loop and waits up to timeout for it to exit.
// It returns false if the loop had to be abandoned.
func (r *Runner) Stop(timeout time.Duration) bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return true
	}
	cancel := r.cancel
	done := r.done
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
