package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
	"github.com/greenlibrary/catalog/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher fans login attempts out to a fixed set of audit workers. Attempts
// are sharded by login so the trail for a single account stays ordered.
type Dispatcher struct {
	workers []chan domain.AuthAttempt
	repo    ports.AuthAuditRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuthAuditRepository, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, repo, log)
}

func newDispatcher(numWorkers, buffer int, repo ports.AuthAuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthAttempt, numWorkers),
		repo:    repo,
		log:     log.With().Str("component", "audit").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthAttempt, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record queues an attempt for persistence. It never blocks the caller: when
// the worker channel is full, or the dispatcher is closed, the attempt is dropped.
func (d *Dispatcher) Record(attempt domain.AuthAttempt) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.AuditDroppedTotal.Inc()
		return
	}

	idx := d.shardIndex(attempt.Login)
	select {
	case d.workers[idx] <- attempt:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("login", attempt.Login).
			Int("worker_id", idx).
			Msg("audit queue full, attempt dropped")
	}
}

// Close stops accepting attempts and waits until the queued ones are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a login deterministically to a worker index.
func (d *Dispatcher) shardIndex(login string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(login))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthAttempt) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case attempt, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			if err := d.repo.InsertAttempt(ctx, attempt); err != nil {
				metrics.AuditErrorsTotal.Inc()
				d.log.Error().Err(err).
					Str("login", attempt.Login).
					Str("outcome", string(attempt.Outcome)).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
