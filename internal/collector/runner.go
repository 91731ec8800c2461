package collector

import (
	"context"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
)

// Run executes one collector and records its run marker. A failed collect
// files a connection alert before the error propagates, so unreachable
// sources surface in the alert log even when nobody reads service logs.
func Run(ctx context.Context, c Collector, repo storage.Repository, l pkgLog.Logger) error {
	if err := c.Collect(ctx); err != nil {
		l.Errorf(ctx, "internal.collector.Run.Collect: %s: %v", c.Name(), err)
		if _, werr := repo.WriteAlerts(ctx, []model.Alert{ConnectionAlert(c.Name(), c.Name(), err)}); werr != nil {
			l.Errorf(ctx, "internal.collector.Run.WriteAlerts: %s: %v", c.Name(), werr)
		}
		return err
	}

	if err := repo.UpdateLastRun(ctx, c.Name(), model.TaskTypeCollector); err != nil {
		l.Errorf(ctx, "internal.collector.Run.UpdateLastRun: %s: %v", c.Name(), err)
		return err
	}
	return nil
}
