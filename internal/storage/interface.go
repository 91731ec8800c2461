package storage

import (
	"context"
	"time"

	"conversion-guard/internal/model"
)

// Repository is the storage collaborator the engine reads source tables
// from and writes alerts and run markers to. A fetch error (including a
// missing table) is distinct from an empty result: callers that want
// fail-closed behavior must check errors.Is(err, ErrMissingTable).
//
//go:generate mockery --name Repository
type Repository interface {
	// Source table reads.
	ConversionActions(ctx context.Context) ([]model.ConversionAction, error)
	AnalyticsEvents(ctx context.Context) ([]model.AnalyticsEvent, error)
	StoreReleases(ctx context.Context, marketplace model.Marketplace) ([]model.StoreRelease, error)

	// Source table writes, used by collectors. The ads table is replaced
	// wholesale each run; the other sources accumulate.
	ReplaceConversionActions(ctx context.Context, rows []model.ConversionAction) error
	AppendAnalyticsEvents(ctx context.Context, rows []model.AnalyticsEvent) error
	AppendStoreReleases(ctx context.Context, marketplace model.Marketplace, rows []model.StoreRelease) error

	// Alert log. WriteAlerts returns false (not an error) for an empty
	// list, and ErrInvalidAlert for malformed input. Inserts are keyed on
	// alert_id, so replaying identical violations does not grow the log.
	WriteAlerts(ctx context.Context, alerts []model.Alert) (bool, error)
	AlertsForAppSince(ctx context.Context, appID string, since time.Time) ([]model.Alert, error)

	// Run log. LastRun returns ErrNoRun when the task has never completed.
	LastRun(ctx context.Context, name, taskType string) (time.Time, error)
	UpdateLastRun(ctx context.Context, name, taskType string) error
}
