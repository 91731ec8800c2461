package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
)

type stubRepo struct {
	actions    []model.ConversionAction
	events     []model.AnalyticsEvent
	appStore   []model.StoreRelease
	playStore  []model.StoreRelease
	alerts     []model.Alert
	lastRuns   map[string]string
	replaceErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{lastRuns: map[string]string{}}
}

func (s *stubRepo) ConversionActions(context.Context) ([]model.ConversionAction, error) {
	return s.actions, nil
}

func (s *stubRepo) AnalyticsEvents(context.Context) ([]model.AnalyticsEvent, error) {
	return s.events, nil
}

func (s *stubRepo) StoreReleases(_ context.Context, marketplace model.Marketplace) ([]model.StoreRelease, error) {
	if marketplace == model.MarketplaceAppStore {
		return s.appStore, nil
	}
	return s.playStore, nil
}

func (s *stubRepo) ReplaceConversionActions(_ context.Context, rows []model.ConversionAction) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.actions = rows
	return nil
}

func (s *stubRepo) AppendAnalyticsEvents(_ context.Context, rows []model.AnalyticsEvent) error {
	s.events = append(s.events, rows...)
	return nil
}

func (s *stubRepo) AppendStoreReleases(_ context.Context, marketplace model.Marketplace, rows []model.StoreRelease) error {
	if marketplace == model.MarketplaceAppStore {
		s.appStore = append(s.appStore, rows...)
	} else {
		s.playStore = append(s.playStore, rows...)
	}
	return nil
}

func (s *stubRepo) WriteAlerts(_ context.Context, alerts []model.Alert) (bool, error) {
	if len(alerts) == 0 {
		return false, nil
	}
	s.alerts = append(s.alerts, alerts...)
	return true, nil
}

func (s *stubRepo) AlertsForAppSince(context.Context, string, time.Time) ([]model.Alert, error) {
	return nil, nil
}

func (s *stubRepo) LastRun(context.Context, string, string) (time.Time, error) {
	return time.Time{}, storage.ErrNoRun
}

func (s *stubRepo) UpdateLastRun(_ context.Context, name, taskType string) error {
	s.lastRuns[name] = taskType
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, ...any)          {}
func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, ...any)           {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, ...any)           {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, ...any)          {}
func (nopLogger) Errorf(context.Context, string, ...any) {}
func (nopLogger) Fatal(context.Context, ...any)          {}
func (nopLogger) Fatalf(context.Context, string, ...any) {}

func TestAdsSnapshotCollector_NormalizesAndOverwrites(t *testing.T) {
	repo := newStubRepo()
	repo.actions = []model.ConversionAction{{AppID: "stale.row"}}

	snap := Snapshot{ConversionActions: []model.ConversionAction{{
		AppID:      "com.x.y",
		PropertyID: 555,
		EventName:  "purchase",
		ActionType: "FIREBASE_ANDROID_CUSTOM",
	}}}

	c := NewAdsSnapshotCollector(snap, repo)
	assert.NoError(t, c.Collect(context.Background()))

	assert.Len(t, repo.actions, 1)
	assert.Equal(t, model.OSAndroid, repo.actions[0].OS)
	assert.Equal(t, "android_555_purchase", repo.actions[0].UID)
}

func TestAnalyticsSnapshotCollector_Appends(t *testing.T) {
	repo := newStubRepo()
	repo.events = []model.AnalyticsEvent{{EventName: "existing"}}

	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{AnalyticsEvents: []model.AnalyticsEvent{{
		PropertyID: 555,
		OS:         model.OSAndroid,
		AppVersion: "1.0.0",
		EventName:  "purchase",
	}}}

	c := NewAnalyticsSnapshotCollector(snap, repo)
	c.now = func() time.Time { return now }
	assert.NoError(t, c.Collect(context.Background()))

	assert.Len(t, repo.events, 2)
	added := repo.events[1]
	assert.Equal(t, "android_555_purchase", added.UID)
	assert.Equal(t, now, added.DateAdded)
}

func TestStoreSnapshotCollector_RoutesByMarketplace(t *testing.T) {
	repo := newStubRepo()
	snap := Snapshot{
		AppStoreReleases:  []model.StoreRelease{{AppID: "123", Version: "1.2.0"}},
		PlayStoreReleases: []model.StoreRelease{{AppID: "com.x.y", Version: "42", Track: "production"}},
	}

	for _, c := range FromSnapshot(snap, repo) {
		assert.NoError(t, c.Collect(context.Background()), c.Name())
	}

	assert.Len(t, repo.appStore, 1)
	assert.Len(t, repo.playStore, 1)
	assert.False(t, repo.appStore[0].Timestamp.IsZero())
}

func TestRun_MarksCollectorRun(t *testing.T) {
	repo := newStubRepo()
	c := NewAdsSnapshotCollector(Snapshot{}, repo)

	assert.NoError(t, Run(context.Background(), c, repo, nopLogger{}))
	assert.Equal(t, model.TaskTypeCollector, repo.lastRuns[c.Name()])
}

func TestRun_FailureFilesConnectionAlert(t *testing.T) {
	repo := newStubRepo()
	repo.replaceErr = assert.AnError
	c := NewAdsSnapshotCollector(Snapshot{}, repo)

	err := Run(context.Background(), c, repo, nopLogger{})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, repo.alerts, 1)
	assert.Equal(t, ConnectorAppID, repo.alerts[0].AppID)
	assert.Equal(t, "ads-collector_ads-collector_connector_error", repo.alerts[0].AlertID)
	assert.Empty(t, repo.lastRuns)
}
