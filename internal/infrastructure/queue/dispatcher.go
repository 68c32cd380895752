package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes change notifications to handlers registered per key
// using a fixed set of workers sharded by consistent hashing on the key,
// guaranteeing per-key delivery order.
type Dispatcher struct {
	workers []chan domain.Change
	log     zerolog.Logger
	depth   prometheus.Gauge

	mu       sync.RWMutex
	handlers map[string]map[int]func(domain.Change)
	nextID   int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDepthGauge reports the number of queued changes on g.
func WithDepthGauge(g prometheus.Gauge) Option {
	return func(d *Dispatcher) { d.depth = g }
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, opts ...Option) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.Change, numWorkers),
		log:      log.With().Str("component", "dispatcher").Logger(),
		handlers: make(map[string]map[int]func(domain.Change)),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Change, channelBuffer)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Register calls fn for every change whose key is key. The returned func
// removes it.
func (d *Dispatcher) Register(key string, fn func(domain.Change)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	if d.handlers[key] == nil {
		d.handlers[key] = make(map[int]func(domain.Change))
	}
	d.handlers[key][id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[key], id)
		if len(d.handlers[key]) == 0 {
			delete(d.handlers, key)
		}
	}
}

// Enqueue sends a change to the worker responsible for its key.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(change domain.Change) {
	if d.depth != nil {
		d.depth.Inc()
	}
	d.workers[d.shardIndex(change.Key)] <- change
}

// Run feeds every change published on the given tables into the dispatcher
// until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, feed ports.ChangeFeed, tables ...string) error {
	var wg sync.WaitGroup
	for _, table := range tables {
		changes, err := feed.Subscribe(ctx, table)
		if err != nil {
			return fmt.Errorf("dispatcher subscribe %s: %w", table, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for change := range changes {
				d.Enqueue(change)
			}
		}()
		d.log.Info().Str("table", table).Msg("listening for changes")
	}
	wg.Wait()
	return nil
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if d.depth != nil {
				d.depth.Dec()
			}
			d.deliver(id, change)
		}
	}
}

func (d *Dispatcher) deliver(workerID int, change domain.Change) {
	d.mu.RLock()
	fns := make([]func(domain.Change), 0, len(d.handlers[change.Key]))
	for _, fn := range d.handlers[change.Key] {
		fns = append(fns, fn)
	}
	d.mu.RUnlock()

	if len(fns) == 0 {
		return
	}
	d.log.Debug().
		Str("table", change.Table).
		Str("key", change.Key).
		Int("worker_id", workerID).
		Int("handlers", len(fns)).
		Msg("delivering change")
	for _, fn := range fns {
		fn(change)
	}
}
