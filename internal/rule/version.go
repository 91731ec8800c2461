package rule

import (
	"context"
	"sort"
	"strings"
	"time"

	"conversion-guard/internal/correlate"
	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
)

// VersionRuleName identifies VersionEventsRule in alert ids and the run log.
const VersionRuleName = "VersionEventsRule"

// FirstOpenEvent is the sentinel event name emitted when a marketplace
// shows a newer build than analytics has ever recorded events for, past
// the instrumentation grace period.
const FirstOpenEvent = "first_open"

// VersionEventsRule flags conversion events present in a previous app
// version but missing from the current one. Marketplace release data
// adjudicates whether an apparent gap is a tracking regression or just a
// freshly released, not-yet-instrumented version.
//
// The package-marketplace feed carries opaque version codes, so release
// detection there falls back to recency of observation. That proxy is
// inherently approximate.
type VersionEventsRule struct {
	appIDs        []string
	grace         time.Duration
	storeLookback time.Duration
	repo          storage.Repository
	l             pkgLog.Logger
	now           func() time.Time
}

// NewVersionEventsRule builds the rule from app-level config.
func NewVersionEventsRule(cfg Config, repo storage.Repository, l pkgLog.Logger) *VersionEventsRule {
	cfg = cfg.withDefaults()
	return &VersionEventsRule{
		appIDs:        cfg.AppIDs,
		grace:         cfg.ReleaseGrace,
		storeLookback: cfg.StoreLookback,
		repo:          repo,
		l:             l,
		now:           time.Now,
	}
}

func (r *VersionEventsRule) Name() string { return VersionRuleName }

func (r *VersionEventsRule) GetData(ctx context.Context) Data {
	var data Data

	actions, err := r.repo.ConversionActions(ctx)
	if err != nil {
		r.l.Errorf(ctx, "internal.rule.version.GetData.ConversionActions: %v", err)
		data.MarkMissing(storage.SourceAds)
	}
	data.ConversionActions = actions

	events, err := r.repo.AnalyticsEvents(ctx)
	if err != nil {
		r.l.Errorf(ctx, "internal.rule.version.GetData.AnalyticsEvents: %v", err)
		data.MarkMissing(storage.SourceAnalytics)
	}
	data.AnalyticsEvents = events

	appStore, err := r.repo.StoreReleases(ctx, model.MarketplaceAppStore)
	if err != nil {
		r.l.Warnf(ctx, "internal.rule.version.GetData.AppStoreReleases: %v", err)
		data.MarkMissing(storage.SourceAppStore)
	}
	data.AppStoreReleases = appStore

	playStore, err := r.repo.StoreReleases(ctx, model.MarketplacePlayStore)
	if err != nil {
		r.l.Warnf(ctx, "internal.rule.version.GetData.PlayStoreReleases: %v", err)
		data.MarkMissing(storage.SourcePlayStore)
	}
	data.PlayStoreReleases = playStore

	return data
}

func (r *VersionEventsRule) CheckRule(data Data) []Violation {
	ctx := context.Background()
	if data.Missing(storage.SourceAds) {
		r.l.Errorf(ctx, "internal.rule.version.CheckRule: missing data from ads collector")
		return nil
	}
	if data.Missing(storage.SourceAnalytics) {
		r.l.Errorf(ctx, "internal.rule.version.CheckRule: missing data from analytics collector")
		return nil
	}

	appStoreLatest := map[string]model.StoreRelease{}
	if !data.Missing(storage.SourceAppStore) {
		appStoreLatest = r.latestReleases(data.AppStoreReleases)
	}
	playStoreLatest := map[string]model.StoreRelease{}
	if !data.Missing(storage.SourcePlayStore) {
		playStoreLatest = r.latestReleases(data.PlayStoreReleases)
	}

	conversionEvents := r.conversionEvents(data)

	var violations []Violation
	for _, appID := range distinctAppIDs(conversionEvents) {
		appEvents := eventsForApp(appID, conversionEvents)
		violations = append(violations, r.checkApp(appID, appEvents, appStoreLatest, playStoreLatest)...)
	}
	return violations
}

// checkApp runs the per-app procedure: establish the current and previous
// versions from analytics, consult the platform's marketplace feed for a
// newer release, and either report the release gap or diff events between
// the two known versions.
func (r *VersionEventsRule) checkApp(
	appID string,
	appEvents []model.ConversionEvent,
	appStoreLatest, playStoreLatest map[string]model.StoreRelease,
) []Violation {
	versions := distinctVersions(appEvents)
	curVer, ok := FindLatestVersion(versions)
	if !ok {
		// No parseable versions, nothing to sequence against.
		return nil
	}

	os := strings.ToLower(appEvents[0].OS)
	release, found := r.latestReleaseFor(appID, os, appStoreLatest, playStoreLatest)

	if found {
		earliest := earliestObservation(curVer, appEvents)
		if r.releaseDetected(os, release, curVer, earliest) {
			if release.Timestamp.Sub(earliest) > r.grace {
				// The marketplace shows a build analytics never recorded
				// events for, well past the grace period. A single
				// sentinel violation stands in for the whole version.
				return []Violation{VersionEvent{
					EventName: FirstOpenEvent,
					AppID:     appID,
					CurVer:    release.Version,
					PrevVer:   curVer,
				}}
			}
			// Fresh release: too early to judge it, diff the versions we
			// already know instead.
		}
	}

	prevVer, ok := FindPreviousVersion(curVer, versions)
	if !ok {
		return nil
	}
	return compareEventsBetweenVersions(appID, curVer, prevVer, appEvents)
}

// releaseDetected decides whether the marketplace shows a build newer than
// the newest version analytics knows. The app marketplace carries real
// semantic versions and compares directly; the package marketplace only
// has opaque version codes, so observation recency stands in for ordering.
func (r *VersionEventsRule) releaseDetected(os string, release model.StoreRelease, curVer string, earliest time.Time) bool {
	if os == "ios" {
		return versionGreater(release.Version, curVer)
	}
	return release.Timestamp.After(earliest)
}

func (r *VersionEventsRule) latestReleaseFor(
	appID, os string,
	appStoreLatest, playStoreLatest map[string]model.StoreRelease,
) (model.StoreRelease, bool) {
	if os == "ios" {
		release, ok := appStoreLatest[appID]
		return release, ok
	}
	release, ok := playStoreLatest[appID]
	return release, ok
}

// latestReleases keeps the newest observation per app within the store
// lookback window.
func (r *VersionEventsRule) latestReleases(releases []model.StoreRelease) map[string]model.StoreRelease {
	horizon := r.now().Add(-r.storeLookback)
	latest := make(map[string]model.StoreRelease)
	for _, release := range releases {
		if release.Timestamp.Before(horizon) {
			continue
		}
		if cur, ok := latest[release.AppID]; !ok || release.Timestamp.After(cur.Timestamp) {
			latest[release.AppID] = release
		}
	}
	return latest
}

// conversionEvents joins analytics rows to ads-defined conversions for the
// monitored apps, recovering app ids.
func (r *VersionEventsRule) conversionEvents(data Data) []model.ConversionEvent {
	uids := correlate.UIDs(r.appIDs, data.ConversionActions)
	filtered := correlate.FilterByUIDs(uids, data.AnalyticsEvents)
	return correlate.AddAppIDs(data.ConversionActions, filtered)
}

func (r *VersionEventsRule) CreateAlerts(violations []Violation) []model.Alert {
	now := r.now()
	var alerts []model.Alert
	for _, v := range violations {
		event, ok := v.(VersionEvent)
		if !ok {
			continue
		}
		alerts = append(alerts, model.NewAlert(
			event.AppID,
			VersionRuleName,
			"Missing event between versions",
			map[string]string{
				"Event Name":           event.EventName,
				"Missing from Version": event.CurVer,
				"Previous Version":     event.PrevVer,
			},
			versionAlertID(event),
			now,
		))
	}
	return alerts
}

func versionAlertID(event VersionEvent) string {
	return VersionRuleName + "_" + event.AppID + "_" + event.EventName + "_" + event.CurVer + "_" + event.PrevVer
}

// compareEventsBetweenVersions emits one violation per event name seen
// under prevVer but absent under curVer.
func compareEventsBetweenVersions(appID, curVer, prevVer string, events []model.ConversionEvent) []Violation {
	curEvents := eventNamesForVersion(curVer, events)
	prevEvents := eventNamesForVersion(prevVer, events)

	var missing []string
	for name := range prevEvents {
		if _, ok := curEvents[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	var violations []Violation
	for _, name := range missing {
		violations = append(violations, VersionEvent{
			EventName: name,
			AppID:     appID,
			CurVer:    curVer,
			PrevVer:   prevVer,
		})
	}
	return violations
}

func eventNamesForVersion(version string, events []model.ConversionEvent) map[string]struct{} {
	names := make(map[string]struct{})
	for _, event := range events {
		if event.AppVersion == version {
			names[event.EventName] = struct{}{}
		}
	}
	return names
}

// earliestObservation returns the earliest analytics date for a version.
func earliestObservation(version string, events []model.ConversionEvent) time.Time {
	var earliest time.Time
	for _, event := range events {
		if event.AppVersion != version {
			continue
		}
		if earliest.IsZero() || event.DateAdded.Before(earliest) {
			earliest = event.DateAdded
		}
	}
	return earliest
}

func distinctAppIDs(events []model.ConversionEvent) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, event := range events {
		if _, ok := seen[event.AppID]; ok {
			continue
		}
		seen[event.AppID] = struct{}{}
		ids = append(ids, event.AppID)
	}
	sort.Strings(ids)
	return ids
}

func distinctVersions(events []model.ConversionEvent) []string {
	seen := make(map[string]struct{})
	var versions []string
	for _, event := range events {
		if _, ok := seen[event.AppVersion]; ok {
			continue
		}
		seen[event.AppVersion] = struct{}{}
		versions = append(versions, event.AppVersion)
	}
	return versions
}

func eventsForApp(appID string, events []model.ConversionEvent) []model.ConversionEvent {
	var res []model.ConversionEvent
	for _, event := range events {
		if event.AppID == appID {
			res = append(res, event)
		}
	}
	return res
}
