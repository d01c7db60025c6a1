package notify

import (
	"context"
	"time"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

// Notifier delivers a single transition event to an external channel.
type Notifier interface {
	Notify(ctx context.Context, ev domain.Transition) error
}

// Nop is wired when no webhook is configured: immediate success, zero
// network calls.
type Nop struct{}

func (Nop) Notify(context.Context, domain.Transition) error { return nil }

// New picks the notifier for the given settings: Discord when a webhook URL
// is configured, otherwise Nop. Delivery gets a small bounded retry.
func New(webhookURL, mentionID string) Notifier {
	if webhookURL == "" {
		return Nop{}
	}
	return &Retry{
		Inner:    NewDiscord(webhookURL, mentionID),
		Attempts: 2,
		Backoff:  500 * time.Millisecond,
	}
}
