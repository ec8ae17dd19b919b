package speech

import (
	"context"
	"sync"
)

// PlayFunc performs the actual audio output. Implementations should honor
// ctx cancellation.
type PlayFunc func(ctx context.Context) error

// Playback runs audio output as a tracked task. Callers can wait for
// completion via Done, inspect the outcome via Err, or cancel early.
type Playback struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// StartPlayback launches play in the background and returns its handle.
func StartPlayback(ctx context.Context, play PlayFunc) *Playback {
	ctx, cancel := context.WithCancel(ctx)
	p := &Playback{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		defer cancel()
		err := play(ctx)
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
	}()

	return p
}

// Done is closed when playback has finished or been cancelled.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Err returns the playback outcome. Valid after Done is closed.
func (p *Playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Cancel stops playback early. It does not wait for the task to exit.
func (p *Playback) Cancel() {
	p.cancel()
}

// Wait blocks until playback finishes or ctx ends, returning the playback
// outcome or the context error.
func (p *Playback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
