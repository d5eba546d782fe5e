package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/platefinder/internal/adapters/mq/queue"
	worker "github.com/okian/platefinder/internal/adapters/mq/worker"
	model "github.com/okian/platefinder/internal/domain/model"
	logging "github.com/okian/platefinder/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockWriter struct {
	mu      sync.Mutex
	entries []model.RequestLogEntry
	fail    map[string]error
	delay   time.Duration
}

func newMockWriter() *mockWriter {
	return &mockWriter{fail: make(map[string]error)}
}

func (m *mockWriter) AppendEntry(ctx context.Context, e model.RequestLogEntry) error { //nolint:gocritic // hugeParam: matches store signature
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[e.ID]; ok {
		return err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockWriter) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.ID)
	}
	return out
}

func entry(id string) model.RequestLogEntry {
	return model.RequestLogEntry{
		ID:        id,
		Endpoint:  "/recommendations",
		Request:   map[string][]string{"query": {"vegan"}},
		Response:  []any{},
		Timestamp: time.Now().UTC(),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		w := newMockWriter()
		wk := worker.NewInMemoryWorker(q, w, worker.WithName("test-worker"))

		convey.Convey("When entries are queued and the queue is closed", func() {
			ctx := context.Background()
			q.Enqueue(ctx, entry("a"))
			q.Enqueue(ctx, entry("b"))
			_ = q.Close()
			wk.Run(ctx)

			convey.Convey("Then every entry is written in order", func() {
				convey.So(w.ids(), convey.ShouldResemble, []string{"a", "b"})
				convey.So(wk.Written(), convey.ShouldEqual, 2)
				convey.So(wk.Failed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the writer rejects an entry", func() {
			ctx := context.Background()
			w.fail["bad"] = errors.New("disk full")
			q.Enqueue(ctx, entry("bad"))
			q.Enqueue(ctx, entry("good"))
			_ = q.Close()
			wk.Run(ctx)

			convey.Convey("Then the failure is counted and later entries still land", func() {
				convey.So(w.ids(), convey.ShouldResemble, []string{"good"})
				convey.So(wk.Failed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go wk.Run(ctx)
			cancel()

			convey.Convey("Then Run returns", func() {
				select {
				case <-wk.Done():
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When a write exceeds the write timeout", func() {
			ctx := context.Background()
			w.delay = 200 * time.Millisecond
			slow := worker.NewInMemoryWorker(q, w, worker.WithWriteTimeout(10*time.Millisecond))
			q.Enqueue(ctx, entry("slow"))
			_ = q.Close()
			slow.Run(ctx)

			convey.Convey("Then the entry is counted as failed", func() {
				convey.So(slow.Failed(), convey.ShouldEqual, 1)
				convey.So(w.ids(), convey.ShouldBeEmpty)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		w := newMockWriter()
		pool := worker.NewPool(4, q, w)
		ctx := context.Background()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When entries are enqueued and the pool shuts down", func() {
			for i := 0; i < 100; i++ {
				convey.So(q.Enqueue(ctx, entry("e")), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(ctx)

			convey.Convey("Then all queued entries are drained", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(w.ids()), convey.ShouldEqual, 100)
				convey.So(pool.Written(), convey.ShouldEqual, 100)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the pool is created with a non-positive count", func() {
			p := worker.NewPool(0, queue.NewInMemoryQueue(), w)

			convey.Convey("Then it still has workers", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Reset(func() {
			_ = pool.Shutdown(ctx)
		})
	})
}
