package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

const (
	// DefaultQueueSize bounds how many undelivered transitions are held in
	// memory before the oldest gets dropped.
	DefaultQueueSize = 64

	sendTimeout = 10 * time.Second
	drainGrace  = 5 * time.Second
)

// Dispatcher decouples delivery from the check loops: every target goroutine
// enqueues transitions, a single consumer sends them. Enqueue never blocks,
// so a slow or dead webhook cannot stall monitoring.
type Dispatcher struct {
	log      *zap.Logger
	notifier Notifier
	queue    chan domain.Transition
}

func NewDispatcher(log *zap.Logger, n Notifier, size int) *Dispatcher {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		log:      log,
		notifier: n,
		queue:    make(chan domain.Transition, size),
	}
}

// Enqueue hands a transition to the consumer. When the queue is full the
// oldest event is evicted so recent state beats stale alerts.
func (d *Dispatcher) Enqueue(ev domain.Transition) {
	select {
	case d.queue <- ev:
	default:
		select {
		case old := <-d.queue:
			d.log.Warn("notify_queue_full",
				zap.String("dropped_url", old.URL),
				zap.String("dropped_id", old.ID),
				zap.Int("capacity", cap(d.queue)),
			)
		default:
		}
		d.queue <- ev
	}
}

// Run consumes until ctx is cancelled, then drains what is left under a
// grace timeout.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		// cancellation wins over a ready queue
		select {
		case <-ctx.Done():
			d.drain()
			d.log.Info("dispatcher_stopped")
			return
		default:
		}

		select {
		case <-ctx.Done():
			d.drain()
			d.log.Info("dispatcher_stopped")
			return
		case ev := <-d.queue:
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev domain.Transition) {
	cctx, cancel := context.WithTimeout(ctx, sendTimeout)
	err := d.notifier.Notify(cctx, ev)
	cancel()
	if err != nil {
		d.log.Warn("notify_failed",
			zap.String("url", ev.URL),
			zap.String("id", ev.ID),
			zap.Error(err),
		)
		return
	}
	d.log.Debug("notify_delivered",
		zap.String("url", ev.URL),
		zap.String("from", string(ev.From)),
		zap.String("to", string(ev.To)),
	)
}

// drain delivers whatever is still queued. Shutdown is already underway, so
// sends run on a fresh context bounded by what is left of the grace window.
func (d *Dispatcher) drain() {
	deadline := time.Now().Add(drainGrace)
	for {
		select {
		case ev := <-d.queue:
			left := time.Until(deadline)
			if left <= 0 {
				d.log.Warn("notify_drain_timeout", zap.Int("undelivered", len(d.queue)+1))
				return
			}
			if left > sendTimeout {
				left = sendTimeout
			}
			cctx, cancel := context.WithTimeout(context.Background(), left)
			if err := d.notifier.Notify(cctx, ev); err != nil {
				d.log.Warn("notify_failed", zap.String("url", ev.URL), zap.Error(err))
			}
			cancel()
		default:
			return
		}
	}
}
