package domain

import "time"

// Status is a site's classified availability. Every site starts out Unknown
// and stays Up or Down once the first probe lands.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

// Known reports whether the status has been observed at least once.
func (s Status) Known() bool { return s == StatusUp || s == StatusDown }

// Target is one monitored site, immutable after config load.
type Target struct {
	URL      string        `json:"url"`
	Interval time.Duration `json:"check_interval"`
	Timeout  time.Duration `json:"timeout"`
}

// SiteState is the last-known availability of a target. One instance per
// target, owned by the tracker.
type SiteState struct {
	Target      Target    `json:"target"`
	Status      Status    `json:"status"`
	HTTPStatus  int       `json:"http_status,omitempty"`
	LatencyMS   float64   `json:"latency_ms"`
	Reason      string    `json:"reason,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	LastChanged time.Time `json:"last_changed"`
}

// Transition records a flip between up and down for one site.
type Transition struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recovered reports whether the transition ends in the up state.
func (t Transition) Recovered() bool { return t.To == StatusUp }
