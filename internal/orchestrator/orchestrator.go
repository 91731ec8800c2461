// Package orchestrator sequences one full run: collectors refresh the
// source tables, rules evaluate them, then each app's new alerts are
// dispatched. Every step runs inside its own failure boundary so one
// broken collector, rule or channel never blocks the rest.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"conversion-guard/internal/collector"
	"conversion-guard/internal/model"
	"conversion-guard/internal/notify"
	"conversion-guard/internal/rule"
	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
	"conversion-guard/pkg/metrics"
)

type Orchestrator struct {
	appIDs     []string
	collectors []collector.Collector
	rules      []rule.Rule
	notifiers  []notify.Notifier
	repo       storage.Repository
	m          *metrics.Metrics
	l          pkgLog.Logger
	now        func() time.Time
}

func New(
	appIDs []string,
	collectors []collector.Collector,
	rules []rule.Rule,
	notifiers []notify.Notifier,
	repo storage.Repository,
	m *metrics.Metrics,
	l pkgLog.Logger,
) *Orchestrator {
	return &Orchestrator{
		appIDs:     appIDs,
		collectors: collectors,
		rules:      rules,
		notifiers:  notifiers,
		repo:       repo,
		m:          m,
		l:          l,
		now:        time.Now,
	}
}

// Run executes one full pass. Collectors complete before any rule starts,
// so rules always observe source tables from the same run. Per-step
// failures are logged and counted but do not abort the pass.
func (o *Orchestrator) Run(ctx context.Context) {
	start := o.now()
	o.l.Infof(ctx, "---------------- starting orchestrator ----------------")

	for _, c := range o.collectors {
		o.l.Infof(ctx, "running collector %s", c.Name())
		err := collector.Run(ctx, c, o.repo, o.l)
		o.m.ObserveRun(c.Name(), err)
		if err != nil {
			o.l.Errorf(ctx, "internal.orchestrator.Run.Collector: %s: %v", c.Name(), err)
		}
	}

	for _, r := range o.rules {
		o.l.Infof(ctx, "running rule %s", r.Name())
		count, err := rule.Run(ctx, r, o.repo, o.l)
		o.m.ObserveRun(r.Name(), err)
		if count > 0 {
			o.m.AlertsCreatedTotal.WithLabelValues(r.Name()).Add(float64(count))
		}
		if err != nil {
			o.l.Errorf(ctx, "internal.orchestrator.Run.Rule: %s: %v", r.Name(), err)
		}
	}

	for _, appID := range o.appIDs {
		o.notifyApp(ctx, appID)
	}

	o.m.RunDuration.Observe(o.now().Sub(start).Seconds())
	o.l.Infof(ctx, "orchestrator finished in %s", o.now().Sub(start))
}

// notifyApp dispatches one app's digests. Each channel is gated on its own
// run marker: only alerts created after the channel's last successful send
// are included, and the marker advances only when the send succeeds.
func (o *Orchestrator) notifyApp(ctx context.Context, appID string) {
	for _, n := range o.notifiers {
		since, err := o.repo.LastRun(ctx, n.Name(), model.ServiceTaskType(appID))
		if err != nil && !errors.Is(err, storage.ErrNoRun) {
			o.l.Errorf(ctx, "internal.orchestrator.notifyApp.LastRun: %s/%s: %v", n.Name(), appID, err)
			continue
		}

		alerts, err := o.repo.AlertsForAppSince(ctx, appID, since)
		if err != nil {
			o.l.Errorf(ctx, "internal.orchestrator.notifyApp.AlertsForAppSince: %s: %v", appID, err)
			continue
		}
		if len(alerts) == 0 {
			continue
		}

		o.l.Infof(ctx, "sending %d alerts for app %s via %s", len(alerts), appID, n.Name())
		err = n.Notify(ctx, appID, alerts)
		o.m.ObserveNotification(n.Name(), err)
		if err != nil {
			o.l.Errorf(ctx, "internal.orchestrator.notifyApp.Notify: %s/%s: %v", n.Name(), appID, err)
			continue
		}

		if err := o.repo.UpdateLastRun(ctx, n.Name(), model.ServiceTaskType(appID)); err != nil {
			o.l.Errorf(ctx, "internal.orchestrator.notifyApp.UpdateLastRun: %s/%s: %v", n.Name(), appID, err)
		}
	}
}
