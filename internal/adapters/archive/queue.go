// Package archive persists finalized session records asynchronously.
//
// A bounded in-memory queue decouples session teardown from disk writes;
// a pool of writers drains the queue into the record store.
package archive

import (
	"context"
	"sync"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
	defaultWriterCount   = 2
)

// Record is the payload type flowing through the archive queue.
type Record = model.SessionRecord

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record to the queue.
	// Returns false if the queue is full and the record was not enqueued.
	Enqueue(ctx context.Context, rec Record) bool

	// Dequeue returns a channel that receives records as they become available.
	// The channel is closed once the queue is closed and fully drained; no
	// enqueued record is ever discarded.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Close stops the queue. After closing, no new records can be enqueued
	// and the dequeue channel is closed once drained.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity < 1 {
		capacity = defaultQueueCapacity
	}
	q := &InMemoryQueue{
		capacity: capacity,
		records:  make(chan Record, capacity),
	}

	metrics.UpdateArchiveQueueCapacity(capacity)
	metrics.UpdateArchiveQueueSize(0)
	metrics.UpdateArchiveQueueUtilization(0.0)

	return q
}

// Enqueue adds a record to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, rec Record) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordArchiveEnqueueError()
		metrics.RecordErrorByComponent("archive", "closed")
		return false
	}

	select {
	case q.records <- rec:
		metrics.RecordArchiveEnqueue()
		q.publishUtilization()
		return true
	case <-ctx.Done():
		metrics.RecordArchiveEnqueueError()
		metrics.RecordErrorByComponent("archive", "context_cancelled")
		return false
	default:
		metrics.RecordArchiveEnqueueError()
		metrics.RecordErrorByComponent("archive", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives records as they become available.
// Every enqueued record is delivered, even after the caller's context ends:
// writers run on the process signal context, and an abort here would lose
// records that Shutdown is expected to drain.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for rec := range q.records {
			out <- rec
			q.publishUtilization()
		}
	}()
	return out
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.records)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) publishUtilization() {
	size := len(q.records)
	metrics.UpdateArchiveQueueSize(size)
	metrics.UpdateArchiveQueueUtilization(float64(size) / float64(q.capacity))
}
