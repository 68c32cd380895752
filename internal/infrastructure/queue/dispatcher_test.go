package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

type stubFeed struct {
	ch chan domain.Change
}

func (f *stubFeed) Publish(_ context.Context, change domain.Change) error {
	f.ch <- change
	return nil
}

func (f *stubFeed) Subscribe(ctx context.Context, _ string) (<-chan domain.Change, error) {
	out := make(chan domain.Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-f.ch:
				out <- c
			}
		}
	}()
	return out, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcher_PreservesPerKeyOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(4, zerolog.Nop())
	d.Start(ctx)

	var mu sync.Mutex
	seen := map[string][]int{}
	record := func(key string) func(domain.Change) {
		return func(c domain.Change) {
			mu.Lock()
			defer mu.Unlock()
			seen[key] = append(seen[key], int(c.At.Unix()))
		}
	}
	d.Register("c-1", record("c-1"))
	d.Register("c-2", record("c-2"))

	const n = 50
	for i := 0; i < n; i++ {
		d.Enqueue(domain.Change{Table: "messages", Key: "c-1", At: time.Unix(int64(i), 0)})
		d.Enqueue(domain.Change{Table: "messages", Key: "c-2", At: time.Unix(int64(i), 0)})
		d.Enqueue(domain.Change{Table: "messages", Key: "unwatched", At: time.Unix(int64(i), 0)})
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen["c-1"]) == n && len(seen["c-2"]) == n
	})

	mu.Lock()
	defer mu.Unlock()
	for key, order := range seen {
		for i, v := range order {
			if v != i {
				t.Fatalf("%s: change %d delivered at position %d", key, v, i)
			}
		}
	}
}

func TestDispatcher_Unregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)

	calls := make(chan domain.Change, 4)
	unregister := d.Register("c-1", func(c domain.Change) { calls <- c })
	d.Enqueue(domain.Change{Key: "c-1"})
	<-calls

	unregister()
	d.Enqueue(domain.Change{Key: "c-1"})
	marker := make(chan struct{})
	var once sync.Once
	d.Register("c-1", func(domain.Change) { once.Do(func() { close(marker) }) })
	d.Enqueue(domain.Change{Key: "c-1"})
	<-marker

	select {
	case <-calls:
		t.Fatal("unregistered handler was called")
	default:
	}
}

func TestDispatcher_RunFromFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_queue_depth"})
	d := NewDispatcher(2, zerolog.Nop(), WithDepthGauge(gauge))
	d.Start(ctx)

	got := make(chan domain.Change, 1)
	d.Register("j-1", func(c domain.Change) { got <- c })

	feed := &stubFeed{ch: make(chan domain.Change)}
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, feed, "jobs") }()

	_ = feed.Publish(context.Background(), domain.Change{Table: "jobs", Key: "j-1", Op: domain.ChangeInsert})
	select {
	case c := <-got:
		if c.Op != domain.ChangeInsert {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change not dispatched")
	}
	waitFor(t, func() bool { return gaugeValue(t, gauge) == 0 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}
