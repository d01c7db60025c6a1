// Package scheduler drives the periodic probing of every configured site.
//
// Each site gets its own goroutine with a fixed-period ticker, so a slow
// endpoint never delays checks of the others. At most one probe per site is
// in flight at any time: if a probe outlasts the period, the missed ticks
// coalesce into a single pending one.
package scheduler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/domain"
	"github.com/excoffierleonard/downdetector/internal/probe"
	"github.com/excoffierleonard/downdetector/internal/state"
)

const (
	defaultInterval = 5 * time.Minute
	defaultTimeout  = 30 * time.Second
)

// TransitionSink receives up/down flips as they are detected.
type TransitionSink interface {
	Enqueue(ev domain.Transition)
}

type Scheduler struct {
	Logger  *zap.Logger
	Prober  probe.Prober
	Tracker *state.Tracker
	Sink    TransitionSink
}

func New(log *zap.Logger, p probe.Prober, tr *state.Tracker, sink TransitionSink) *Scheduler {
	return &Scheduler{Logger: log, Prober: p, Tracker: tr, Sink: sink}
}

// Run probes every target on its own schedule until ctx is cancelled.
// It blocks until all per-site loops have stopped.
func (s *Scheduler) Run(ctx context.Context, targets []domain.Target) {
	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t domain.Target) {
			defer wg.Done()
			s.runTarget(ctx, t)
		}(t)
	}
	wg.Wait()
}

func (s *Scheduler) runTarget(ctx context.Context, t domain.Target) {
	interval := t.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// first check fires immediately, then on every tick
	s.checkOnce(ctx, t.URL, timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Debug("site_loop_stopped", zap.String("url", t.URL))
			return
		case <-ticker.C:
			s.checkOnce(ctx, t.URL, timeout)
		}
	}
}

func (s *Scheduler) checkOnce(ctx context.Context, rawURL string, timeout time.Duration) {
	out := s.Prober.Probe(ctx, rawURL, timeout)
	if ctx.Err() != nil {
		// probe was cut short by shutdown, not by the site
		return
	}

	if out.Class == probe.ClassNetworkError {
		if host := hostOf(rawURL); host != "" {
			out.Reason = out.Reason + " dns=" + probe.DNSClass(host)
		}
	}

	tr := s.Tracker.Apply(rawURL, out, time.Now().UTC())

	fields := []zap.Field{
		zap.String("url", rawURL),
		zap.String("class", string(out.Class)),
		zap.Float64("latency_ms", out.LatencyMS),
	}
	if out.StatusCode != 0 {
		fields = append(fields, zap.Int("status", out.StatusCode))
	}
	if out.Reason != "" {
		fields = append(fields, zap.String("reason", out.Reason))
	}
	if out.Healthy() {
		s.Logger.Debug("site_checked", fields...)
	} else {
		s.Logger.Warn("site_checked", fields...)
	}

	if tr == nil {
		return
	}
	if tr.Recovered() {
		s.Logger.Info("site_recovered", zap.String("url", tr.URL))
	} else {
		s.Logger.Warn("site_down", zap.String("url", tr.URL), zap.String("reason", tr.Reason))
	}
	s.Sink.Enqueue(*tr)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
