package archive_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/parley/internal/adapters/archive"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithOutput(io.Discard))
	os.Exit(m.Run())
}

// memStore records saved sessions and can simulate failures.
type memStore struct {
	mu    sync.Mutex
	saved []model.SessionRecord
	err   error
}

func (s *memStore) Save(_ context.Context, rec model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, rec)
	return nil
}

func (s *memStore) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.saved))
	for i, rec := range s.saved {
		out[i] = rec.SessionID
	}
	return out
}

func rec(id string) model.SessionRecord {
	return model.SessionRecord{SessionID: id, Topic: "Weather", FinalScore: 50}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded queue", t, func() {
		q := archive.NewInMemoryQueue(2)

		Convey("When records fit the capacity", func() {
			So(q.Enqueue(ctx, rec("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, rec("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then the next enqueue is dropped", func() {
				So(q.Enqueue(ctx, rec("c")), ShouldBeFalse)
			})

			Convey("And dequeue drains in FIFO order", func() {
				So(q.Close(), ShouldBeNil)
				var got []string
				for r := range q.Dequeue(ctx) {
					got = append(got, r.SessionID)
				}
				So(got, ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues are rejected", func() {
				So(q.Enqueue(ctx, rec("late")), ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the capacity is invalid it falls back to the default", func() {
			tiny := archive.NewInMemoryQueue(0)
			So(tiny.Enqueue(ctx, rec("a")), ShouldBeTrue)
		})
	})
}

func TestArchiver(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running archiver", t, func() {
		store := &memStore{}
		a := archive.New(store, archive.WithQueueCapacity(8), archive.WithWriterCount(2))
		a.Start(ctx)

		Convey("When records are archived", func() {
			So(a.Archive(ctx, rec("weather_20250314_150000")), ShouldBeTrue)
			So(a.Archive(ctx, rec("weather_20250314_160000")), ShouldBeTrue)

			Convey("Then shutdown drains them into the store", func() {
				shutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				So(a.Shutdown(shutCtx), ShouldBeNil)

				ids := store.ids()
				So(ids, ShouldHaveLength, 2)
				So(ids, ShouldContain, "weather_20250314_150000")
				So(ids, ShouldContain, "weather_20250314_160000")
			})
		})

		Convey("When the writers' context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			late := archive.New(store, archive.WithQueueCapacity(8), archive.WithWriterCount(2))
			late.Start(cancelled)
			So(late.Archive(ctx, rec("weather_20250314_170000")), ShouldBeTrue)

			Convey("Then shutdown still delivers every enqueued record", func() {
				shutCtx, shutCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutCancel()
				So(late.Shutdown(shutCtx), ShouldBeNil)
				So(store.ids(), ShouldContain, "weather_20250314_170000")
			})
		})

		Convey("When the store fails", func() {
			store.err = errors.New("disk full")
			So(a.Archive(ctx, rec("weather_20250314_150000")), ShouldBeTrue)

			Convey("Then shutdown still completes and nothing is saved", func() {
				shutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				So(a.Shutdown(shutCtx), ShouldBeNil)
				So(store.ids(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a tiny queue", t, func() {
		store := &memStore{}
		a := archive.New(store, archive.WithQueueCapacity(1), archive.WithWriterCount(1))

		Convey("When the queue is full before the pool starts", func() {
			So(a.Archive(ctx, rec("a")), ShouldBeTrue)

			Convey("Then the overflow record is dropped, not blocked on", func() {
				So(a.Archive(ctx, rec("b")), ShouldBeFalse)
				So(a.Pending(ctx), ShouldEqual, 1)
			})
		})
	})
}
