package probe

import (
	"context"
	"time"
)

// Class is the coarse result of a single probe. Only ClassSuccess counts as
// the site being up.
type Class string

const (
	ClassSuccess      Class = "success"
	ClassHTTPError    Class = "http_error"
	ClassNetworkError Class = "network_error"
	ClassTimeout      Class = "timeout"
)

// Outcome is what one probe observed. Produced fresh each check, never
// stored beyond the tracker's last-known state.
type Outcome struct {
	Class      Class
	StatusCode int // 0 unless an HTTP response was received
	LatencyMS  float64
	Reason     string
}

// Healthy reports whether the outcome counts as the site being up.
func (o Outcome) Healthy() bool { return o.Class == ClassSuccess }

type Prober interface {
	Probe(ctx context.Context, target string, timeout time.Duration) Outcome
}
