package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
	"github.com/identity-hub/identity-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	processTimeout = 10 * time.Second
)

// Dispatcher routes account events to a fixed set of workers using
// consistent hashing on the user id, preserving per-account ordering.
type Dispatcher struct {
	workers []chan domain.AccountEvent
	service ports.AuditService
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.AuditPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AccountEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccountEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or Stop is called, after persisting whatever is still buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Stop rejects further events, lets the workers flush their buffers and
// waits for them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Publish hands event to the worker responsible for its user. It never
// blocks the caller: when the worker's buffer is full the event is dropped.
func (d *Dispatcher) Publish(event domain.AccountEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.AuditErrorsTotal.WithLabelValues("stopped").Inc()
		d.log.Warn().
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Msg("audit dispatcher stopped, event dropped")
		return
	}

	id := d.shardIndex(event.UserID)
	select {
	case d.workers[id] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(d.workers[id])))
	default:
		metrics.AuditErrorsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

// drain persists the events already buffered when the worker is cancelled.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, event)
		default:
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AccountEvent) {
	// Persist even when the request or the worker context is gone.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), processTimeout)
	defer cancel()
	if err := d.service.Process(pctx, event); err != nil {
		d.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("account event processing failed")
	}
}
