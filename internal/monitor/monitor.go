// Package monitor assembles the checking pipeline: prober, state tracker,
// per-site schedules and the notification dispatcher.
package monitor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/domain"
	"github.com/excoffierleonard/downdetector/internal/notify"
	"github.com/excoffierleonard/downdetector/internal/probe"
	"github.com/excoffierleonard/downdetector/internal/scheduler"
	"github.com/excoffierleonard/downdetector/internal/state"
)

// Options carry everything the monitor needs from configuration.
type Options struct {
	Targets    []domain.Target
	WebhookURL string
	MentionID  string
	QueueSize  int
}

type Monitor struct {
	log        *zap.Logger
	opts       Options
	tracker    *state.Tracker
	dispatcher *notify.Dispatcher
	sched      *scheduler.Scheduler
}

func New(log *zap.Logger, opts Options) *Monitor {
	tracker := state.NewTracker(opts.Targets)
	dispatcher := notify.NewDispatcher(log, notify.New(opts.WebhookURL, opts.MentionID), opts.QueueSize)
	sched := scheduler.New(log, probe.NewHTTPProber(), tracker, dispatcher)
	return &Monitor{log: log, opts: opts, tracker: tracker, dispatcher: dispatcher, sched: sched}
}

// States reports the latest known state of every site.
func (m *Monitor) States() []domain.SiteState {
	return m.tracker.Snapshot()
}

// Run blocks until ctx is cancelled, then finishes in-flight checks and
// drains pending notifications before returning.
func (m *Monitor) Run(ctx context.Context) {
	m.logStartup()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.dispatcher.Run(ctx)
	}()

	m.sched.Run(ctx, m.opts.Targets)
	wg.Wait()
	m.log.Info("monitor_stopped")
}

func (m *Monitor) logStartup() {
	m.log.Info("monitor_started", zap.Int("sites", len(m.opts.Targets)))
	if m.opts.WebhookURL == "" {
		m.log.Warn("webhook_missing", zap.String("hint", "set webhook_url or WEBHOOK_URL to enable notifications"))
		return
	}
	m.log.Info("webhook_configured")
	if m.opts.MentionID == "" {
		m.log.Warn("mention_missing", zap.String("hint", "set discord_id or DISCORD_ID to be pinged on alerts"))
	} else {
		m.log.Info("mention_configured")
	}
}
