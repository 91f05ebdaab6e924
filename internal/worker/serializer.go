package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStopped is returned for work submitted after the serializer shut down.
var ErrStopped = errors.New("serializer stopped")

type job struct {
	fn   func() error
	done chan error
}

// Serializer runs submitted writes one at a time on a single goroutine.
// Writes hold the exclusive side of the lock so readers never observe a
// half-applied change.
type Serializer struct {
	name   string
	logger *slog.Logger

	jobs    chan job
	stopped chan struct{}
	lock    sync.RWMutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewSerializer constructs a serializer; name is used in log records.
func NewSerializer(name string, logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{
		name:    name,
		logger:  logger,
		jobs:    make(chan job),
		stopped: make(chan struct{}),
	}
}

// Start launches the writer goroutine.
func (s *Serializer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop terminates the writer goroutine after the in-flight write completes.
func (s *Serializer) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Do runs fn on the writer goroutine and returns its error. Once fn has been
// accepted it always runs to completion, even if ctx is cancelled meanwhile.
func (s *Serializer) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case s.jobs <- j:
	}
	return <-j.done
}

// Read runs fn while no write is in progress.
func (s *Serializer) Read(fn func() error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return fn()
}

func (s *Serializer) run(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.jobs:
			j.done <- s.exec(j.fn)
		}
	}
}

func (s *Serializer) exec(fn func() error) (err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("serialized write panicked", slog.String("writer", s.name), slog.Any("panic", r))
			err = fmt.Errorf("%s: write panicked: %v", s.name, r)
		}
	}()

	return fn()
}
