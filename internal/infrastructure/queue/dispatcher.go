package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/api/metrics"
	"github.com/devportfolio/portfolio-api/internal/core/domain"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
	jobTimeout     = 30 * time.Second
)

// Dispatcher delivers contact notifications on a fixed set of workers so the
// submitting request never waits on SMTP.
type Dispatcher struct {
	jobs     chan *domain.Contact
	workers  int
	notifier ports.ContactNotifier
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers workers sharing one
// buffered queue. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers, buffer int, notifier ports.ContactNotifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	return &Dispatcher{
		jobs:     make(chan *domain.Contact, buffer),
		workers:  numWorkers,
		notifier: notifier,
		log:      log,
	}
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled or
// when Stop has drained the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Enqueue hands c to the workers without blocking. It returns false when the
// queue is full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(c *domain.Contact) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.jobs <- c:
		metrics.NotificationQueueDepth.Set(float64(len(d.jobs)))
		return true
	default:
		metrics.NotificationsDroppedTotal.Inc()
		return false
	}
}

// Stop refuses new jobs, lets the workers finish what is queued and waits
// for them. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-d.jobs:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.Set(float64(len(d.jobs)))
			d.process(ctx, id, c)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, c *domain.Contact) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.NotifyContact(ctx, c)
	if err != nil {
		metrics.NotificationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		d.log.Error().Err(err).
			Str("contact_id", c.ID).
			Int("worker_id", workerID).
			Msg("contact notification failed")
		return
	}
	metrics.NotificationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
}
