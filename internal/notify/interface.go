// Package notify renders per-app alert digests and dispatches them through
// the configured channels. Gating (which alerts are new since the last
// digest) belongs to the orchestrator; notifiers only deliver.
package notify

import (
	"context"

	"conversion-guard/internal/model"
)

// Notifier delivers one app's digest over one channel. Name doubles as the
// run-log task name gating repeat sends.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, appID string, alerts []model.Alert) error
}
