package notify

import (
	"context"
	"time"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

// Retry wraps a notifier with a small bounded retry. Attempts and backoff
// stay small on purpose: delivery must never hold up the queue for long.
type Retry struct {
	Inner    Notifier
	Attempts int
	Backoff  time.Duration
}

func (r *Retry) Notify(ctx context.Context, ev domain.Transition) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(r.Backoff):
			}
		}
		if err = r.Inner.Notify(ctx, ev); err == nil {
			return nil
		}
	}
	return err
}
