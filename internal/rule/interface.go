// Package rule implements the analytical rules that cross-reference the
// collected source tables and turn detected inconsistencies into alerts.
package rule

import (
	"context"
	"time"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
)

// Rule is the contract every analytical rule implements. A run walks the
// four steps in order: GetData pulls the source tables, CheckRule derives
// violations from them, CreateAlerts maps violations to alert rows, and the
// runner persists the alerts plus a run marker.
type Rule interface {
	Name() string

	// GetData fetches every source the rule needs. A source that cannot
	// be fetched is marked absent on the returned Data rather than
	// failing the run; CheckRule decides how to degrade.
	GetData(ctx context.Context) Data

	// CheckRule is a pure function of its input and performs no I/O.
	CheckRule(data Data) []Violation

	// CreateAlerts maps each violation to exactly one alert with a
	// deterministic alert id.
	CreateAlerts(violations []Violation) []model.Alert
}

// Violation is a rule-specific finding, created and consumed within a
// single run.
type Violation interface {
	violation()
}

// IntervalEvent flags a conversion event defined in the ads source that was
// not observed in the analytics source within the lookback interval.
type IntervalEvent struct {
	EventName string
	AppID     string
	Interval  int // hours
}

func (IntervalEvent) violation() {}

// VersionEvent flags a conversion event seen in a previous app version but
// absent from the current one. The synthetic event name "first_open" marks
// a marketplace release with no matching analytics data at all.
type VersionEvent struct {
	EventName string
	AppID     string
	CurVer    string
	PrevVer   string
}

func (VersionEvent) violation() {}

// Data carries per-source fetch results for one rule run. Absence of a
// source (fetch failure, missing table) is distinct from an empty slice.
type Data struct {
	ConversionActions []model.ConversionAction
	AnalyticsEvents   []model.AnalyticsEvent
	AppStoreReleases  []model.StoreRelease
	PlayStoreReleases []model.StoreRelease

	missing map[storage.Source]bool
}

// MarkMissing records that a source could not be fetched.
func (d *Data) MarkMissing(src storage.Source) {
	if d.missing == nil {
		d.missing = make(map[storage.Source]bool)
	}
	d.missing[src] = true
}

// Missing reports whether the source failed to fetch.
func (d Data) Missing(src storage.Source) bool {
	return d.missing[src]
}

// Config carries the app-level settings rules evaluate against. Thresholds
// default when zero so config files only set what they change.
type Config struct {
	// AppIDs lists the monitored apps.
	AppIDs []string

	// IntervalLookback is the window IntervalEventsRule checks for
	// observed events.
	IntervalLookback time.Duration

	// ReleaseGrace is how long a fresh marketplace release is excused
	// from carrying analytics data before it counts as an anomaly.
	ReleaseGrace time.Duration

	// StoreLookback bounds how old a marketplace observation may be and
	// still describe the current release.
	StoreLookback time.Duration
}

// Threshold defaults.
const (
	DefaultIntervalLookback = 24 * time.Hour
	DefaultReleaseGrace     = 24 * time.Hour
	DefaultStoreLookback    = 7 * 24 * time.Hour
)

func (c Config) withDefaults() Config {
	if c.IntervalLookback <= 0 {
		c.IntervalLookback = DefaultIntervalLookback
	}
	if c.ReleaseGrace <= 0 {
		c.ReleaseGrace = DefaultReleaseGrace
	}
	if c.StoreLookback <= 0 {
		c.StoreLookback = DefaultStoreLookback
	}
	return c
}
