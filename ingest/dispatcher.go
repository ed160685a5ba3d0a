package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// impression is one queued unit of ingestion work.
type impression struct {
	userAgent  string
	requestURL string
}

// Dispatcher decouples ingestion from the request/response lifecycle: the
// serving path submits impressions to a bounded queue and worker
// goroutines drain it in the background. Submit never blocks; when the
// queue is full the impression is dropped, which is an acceptable loss for
// an approximate counter.
type Dispatcher struct {
	handler   *Handler
	queue     chan impression
	opTimeout time.Duration
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher starts the given number of workers over a bounded queue.
func NewDispatcher(handler *Handler, queueSize, workers int, opTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		handler:   handler,
		queue:     make(chan impression, queueSize),
		opTimeout: opTimeout,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	log.Info().
		Int("workers", workers).
		Int("queue_size", queueSize).
		Msg("Ingest dispatcher started")
	return d
}

// Submit enqueues one impression without blocking. Returns false when the
// impression was dropped because the queue is full.
func (d *Dispatcher) Submit(userAgent, requestURL string) bool {
	select {
	case d.queue <- impression{userAgent: userAgent, requestURL: requestURL}:
		return true
	default:
		log.Warn().Str("url", requestURL).Msg("Ingest queue full, impression dropped")
		return false
	}
}

// Close stops accepting work and waits for queued impressions to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	log.Info().Msg("Ingest dispatcher stopped")
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for imp := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.opTimeout)
		d.handler.Handle(ctx, imp.userAgent, imp.requestURL)
		cancel()
	}
}
