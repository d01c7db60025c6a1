package state

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/excoffierleonard/downdetector/internal/domain"
	"github.com/excoffierleonard/downdetector/internal/probe"
)

// Tracker owns the last-known availability of every monitored site and
// decides when a probe outcome amounts to a notifiable transition. It is the
// only writer of SiteState; the status API reads through Snapshot.
type Tracker struct {
	mu    sync.RWMutex
	sites map[string]*domain.SiteState
}

func NewTracker(targets []domain.Target) *Tracker {
	t := &Tracker{sites: make(map[string]*domain.SiteState, len(targets))}
	for _, tgt := range targets {
		t.sites[tgt.URL] = &domain.SiteState{Target: tgt, Status: domain.StatusUnknown}
	}
	return t
}

// Apply records an outcome for url and returns the transition it caused, or
// nil. The first outcome for a site only sets its baseline; startup is not a
// transition.
func (t *Tracker) Apply(url string, out probe.Outcome, at time.Time) *domain.Transition {
	next := domain.StatusDown
	if out.Healthy() {
		next = domain.StatusUp
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.sites[url]
	if s == nil {
		s = &domain.SiteState{Target: domain.Target{URL: url}, Status: domain.StatusUnknown}
		t.sites[url] = s
	}

	s.HTTPStatus = out.StatusCode
	s.LatencyMS = out.LatencyMS
	s.Reason = out.Reason
	s.LastChecked = at

	if !s.Status.Known() {
		s.Status = next
		s.LastChanged = at
		return nil
	}
	if s.Status == next {
		return nil
	}

	prev := s.Status
	s.Status = next
	s.LastChanged = at
	return &domain.Transition{
		ID:         uuid.NewString(),
		URL:        url,
		From:       prev,
		To:         next,
		Reason:     out.Reason,
		OccurredAt: at,
	}
}

// Snapshot returns a copy of every site state, sorted by URL.
func (t *Tracker) Snapshot() []domain.SiteState {
	t.mu.RLock()
	out := make([]domain.SiteState, 0, len(t.sites))
	for _, s := range t.sites {
		out = append(out, *s)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Target.URL < out[j].Target.URL })
	return out
}
