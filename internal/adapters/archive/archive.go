package archive

import (
	"context"

	"github.com/okian/parley/internal/domain/model"
)

// Archiver accepts finalized session records and persists them in the
// background. Archive never blocks session teardown; a full queue drops
// the record and reports false.
type Archiver struct {
	queue *InMemoryQueue
	pool  *Pool
}

// New creates an Archiver writing to store.
func New(store Store, opts ...Option) *Archiver {
	cfg := settings{
		queueCapacity: defaultQueueCapacity,
		writerCount:   defaultWriterCount,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	q := NewInMemoryQueue(cfg.queueCapacity)
	return &Archiver{
		queue: q,
		pool:  NewPool(cfg.writerCount, q, store),
	}
}

// Start launches the writer pool.
func (a *Archiver) Start(ctx context.Context) {
	a.pool.Start(ctx)
}

// Archive enqueues a record for persistence. Returns false if the record
// was dropped.
func (a *Archiver) Archive(ctx context.Context, rec model.SessionRecord) bool {
	return a.queue.Enqueue(ctx, rec)
}

// Pending returns the number of records awaiting persistence.
func (a *Archiver) Pending(ctx context.Context) int {
	return a.queue.Len(ctx)
}

// Shutdown closes the queue and waits for queued records to be written.
func (a *Archiver) Shutdown(ctx context.Context) error {
	return a.pool.Shutdown(ctx)
}
