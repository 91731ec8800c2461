package rule

import (
	"context"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
)

// Run executes one rule end to end: fetch, check, alert, persist. Fetch
// failures degrade inside the rule (fail-closed); persistence failures
// propagate to the caller. The run marker is written even when no alerts
// were produced, so a clean run still counts as a run. Returns the number
// of alerts handed to the alert log.
func Run(ctx context.Context, r Rule, repo storage.Repository, l pkgLog.Logger) (int, error) {
	data := r.GetData(ctx)
	violations := r.CheckRule(data)
	alerts := r.CreateAlerts(violations)

	written, err := repo.WriteAlerts(ctx, alerts)
	if err != nil {
		l.Errorf(ctx, "internal.rule.Run.WriteAlerts: %s: %v", r.Name(), err)
		return 0, err
	}
	if written {
		l.Infof(ctx, "rule %s wrote %d alerts", r.Name(), len(alerts))
	}

	if err := repo.UpdateLastRun(ctx, r.Name(), model.TaskTypeRule); err != nil {
		l.Errorf(ctx, "internal.rule.Run.UpdateLastRun: %s: %v", r.Name(), err)
		return len(alerts), err
	}
	return len(alerts), nil
}
