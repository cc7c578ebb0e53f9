package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// JournalDispatcher moves attempt journaling off the checkout path. Records
// are routed to a fixed set of workers by consistent hashing on the attempt
// id, so the writes of one attempt keep their order.
type JournalDispatcher struct {
	workers []chan domain.CheckoutAttempt
	journal ports.AttemptJournal
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewJournalDispatcher creates a dispatcher with numWorkers sharded workers
// writing to journal. If numWorkers <= 0, defaultWorkers is used.
func NewJournalDispatcher(numWorkers int, journal ports.AttemptJournal, log zerolog.Logger) *JournalDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &JournalDispatcher{
		workers: make([]chan domain.CheckoutAttempt, numWorkers),
		journal: journal,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CheckoutAttempt, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx does not stop them;
// they exit only after Close has drained their queues.
func (d *JournalDispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record implements ports.AttemptJournal by enqueueing a copy of the attempt.
// The call is non-blocking up to channelBuffer capacity per worker.
func (d *JournalDispatcher) Record(_ context.Context, attempt *domain.CheckoutAttempt) error {
	cp := *attempt
	cp.Items = append([]domain.OrderItem(nil), attempt.Items...)
	if attempt.Intent != nil {
		intent := *attempt.Intent
		cp.Intent = &intent
	}
	d.workers[d.shardIndex(cp.ID)] <- cp
	return nil
}

// Close stops accepting records and waits for queued ones to be written.
// Record must not be called after Close.
func (d *JournalDispatcher) Close() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// shardIndex maps an attempt id deterministically to a worker index.
func (d *JournalDispatcher) shardIndex(attemptID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(attemptID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *JournalDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.CheckoutAttempt) {
	defer d.wg.Done()
	for attempt := range ch {
		if err := d.journal.Record(ctx, &attempt); err != nil {
			d.log.Error().Err(err).
				Str("attempt_id", attempt.ID).
				Int("worker_id", id).
				Msg("journal write failed")
		}
	}
}
