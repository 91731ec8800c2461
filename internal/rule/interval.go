package rule

import (
	"context"
	"strconv"
	"time"

	"conversion-guard/internal/correlate"
	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
)

// IntervalRuleName identifies IntervalEventsRule in alert ids and the run log.
const IntervalRuleName = "IntervalEventsRule"

// IntervalEventsRule flags conversion events defined in the ads source
// that have not been observed in the analytics source within the lookback
// window. Missing source tables degrade to "nothing checked".
type IntervalEventsRule struct {
	appIDs   []string
	lookback time.Duration
	repo     storage.Repository
	l        pkgLog.Logger
	now      func() time.Time
}

// NewIntervalEventsRule builds the rule from app-level config.
func NewIntervalEventsRule(cfg Config, repo storage.Repository, l pkgLog.Logger) *IntervalEventsRule {
	cfg = cfg.withDefaults()
	return &IntervalEventsRule{
		appIDs:   cfg.AppIDs,
		lookback: cfg.IntervalLookback,
		repo:     repo,
		l:        l,
		now:      time.Now,
	}
}

func (r *IntervalEventsRule) Name() string { return IntervalRuleName }

func (r *IntervalEventsRule) GetData(ctx context.Context) Data {
	var data Data

	actions, err := r.repo.ConversionActions(ctx)
	if err != nil {
		r.l.Errorf(ctx, "internal.rule.interval.GetData.ConversionActions: %v", err)
		data.MarkMissing(storage.SourceAds)
	}
	data.ConversionActions = actions

	events, err := r.repo.AnalyticsEvents(ctx)
	if err != nil {
		r.l.Errorf(ctx, "internal.rule.interval.GetData.AnalyticsEvents: %v", err)
		data.MarkMissing(storage.SourceAnalytics)
	}
	data.AnalyticsEvents = events

	return data
}

func (r *IntervalEventsRule) CheckRule(data Data) []Violation {
	ctx := context.Background()
	if data.Missing(storage.SourceAds) || data.Missing(storage.SourceAnalytics) {
		r.l.Errorf(ctx, "internal.rule.interval.CheckRule: missing source data, skipping check")
		return nil
	}

	uids := correlate.UIDs(r.appIDs, data.ConversionActions)

	cutoff := dayFloor(r.now().Add(-r.lookback))
	var recent []model.AnalyticsEvent
	for _, event := range correlate.FilterByUIDs(uids, data.AnalyticsEvents) {
		if !event.DateAdded.Before(cutoff) {
			recent = append(recent, event)
		}
	}

	seen := make(map[string]struct{})
	for _, event := range correlate.AddAppIDs(data.ConversionActions, recent) {
		seen[event.UID] = struct{}{}
	}

	monitored := make(map[string]struct{}, len(r.appIDs))
	for _, id := range r.appIDs {
		monitored[id] = struct{}{}
	}

	interval := int(r.lookback / time.Hour)
	emitted := make(map[string]struct{})
	var violations []Violation
	for _, action := range data.ConversionActions {
		if _, ok := monitored[action.AppID]; !ok {
			continue
		}
		if _, ok := seen[action.UID]; ok {
			continue
		}
		// One violation per (app, event): the same event configured for
		// both platforms maps to a single alert identity.
		key := action.AppID + "\x00" + action.EventName
		if _, ok := emitted[key]; ok {
			continue
		}
		emitted[key] = struct{}{}
		violations = append(violations, IntervalEvent{
			EventName: action.EventName,
			AppID:     action.AppID,
			Interval:  interval,
		})
	}
	return violations
}

func (r *IntervalEventsRule) CreateAlerts(violations []Violation) []model.Alert {
	now := r.now()
	var alerts []model.Alert
	for _, v := range violations {
		event, ok := v.(IntervalEvent)
		if !ok {
			continue
		}
		alerts = append(alerts, model.NewAlert(
			event.AppID,
			IntervalRuleName,
			"Missing event for interval",
			map[string]string{
				"Event Name":  event.EventName,
				"Missing for": strconv.Itoa(event.Interval),
			},
			intervalAlertID(event),
			now,
		))
	}
	return alerts
}

func intervalAlertID(event IntervalEvent) string {
	return IntervalRuleName + "_" + event.AppID + "_" + event.EventName + "_" + strconv.Itoa(event.Interval)
}

// dayFloor truncates t to the start of its calendar day.
func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
