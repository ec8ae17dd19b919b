package archive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

const writerShutdownTimeout = 5 * time.Second

// Store persists a finalized session record.
type Store interface {
	Save(ctx context.Context, rec model.SessionRecord) error
}

// Writer drains records off the queue and persists them.
type Writer struct {
	queue Queue
	store Store
	name  string

	done chan struct{}

	logger logger.Logger
}

// NewWriter creates a writer bound to a queue and store.
func NewWriter(queue Queue, store Store, name string) *Writer {
	if name == "" {
		name = "writer"
	}
	return &Writer{
		queue:  queue,
		store:  store,
		name:   name,
		done:   make(chan struct{}),
		logger: logger.Get().Named(name),
	}
}

// Run consumes records until the queue is closed and drained. Cancellation
// of ctx does not abort the drain; it only flows into persistence calls.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	for rec := range w.queue.Dequeue(ctx) {
		w.persist(ctx, rec)
	}
}

// persist writes a single record. Failures are logged and counted; the
// writer keeps going.
func (w *Writer) persist(ctx context.Context, rec Record) {
	start := time.Now()
	err := w.store.Save(ctx, rec)
	metrics.RecordArchiveWriteLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("archive", "persist_error")
		w.logger.Error(ctx, "failed to persist session record",
			logger.String("session_id", rec.SessionID),
			logger.Error(err),
		)
		return
	}

	metrics.RecordRecordPersisted()
	w.logger.Info(ctx, "session record persisted",
		logger.String("session_id", rec.SessionID),
	)
}

// Pool manages multiple writers sharing one queue.
type Pool struct {
	writers []*Writer
	queue   Queue

	logger logger.Logger
}

// NewPool creates a writer pool.
func NewPool(writerCount int, queue Queue, store Store) *Pool {
	if writerCount < 1 {
		writerCount = defaultWriterCount
	}

	pool := &Pool{
		writers: make([]*Writer, writerCount),
		queue:   queue,
		logger:  logger.Get().Named("archive-pool"),
	}
	for i := range pool.writers {
		pool.writers[i] = NewWriter(queue, store, "archive-writer-"+strconv.Itoa(i))
	}

	metrics.UpdateArchiveWriterCount(writerCount)

	return pool
}

// Start launches all writers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.writers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for writers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing archive queue", logger.Error(err))
	}

	for i, w := range p.writers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "archive writer shutdown timed out", logger.Int("writer_id", i))
			return fmt.Errorf("archive shutdown timed out: %w", ctx.Err())
		case <-time.After(writerShutdownTimeout):
			p.logger.Warn(ctx, "archive writer shutdown timed out", logger.Int("writer_id", i))
		}
	}
	return nil
}
