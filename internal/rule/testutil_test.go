package rule

import (
	"context"
	"sync"
	"time"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
)

// fakeRepo is an in-memory storage.Repository with injectable failures.
type fakeRepo struct {
	mu sync.Mutex

	actions    []model.ConversionAction
	actionsErr error

	events    []model.AnalyticsEvent
	eventsErr error

	appStore    []model.StoreRelease
	appStoreErr error

	playStore    []model.StoreRelease
	playStoreErr error

	written  [][]model.Alert
	writeErr error

	lastRuns  map[string]time.Time
	updateErr error
}

var _ storage.Repository = &fakeRepo{}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{lastRuns: map[string]time.Time{}}
}

func (f *fakeRepo) ConversionActions(context.Context) ([]model.ConversionAction, error) {
	return f.actions, f.actionsErr
}

func (f *fakeRepo) AnalyticsEvents(context.Context) ([]model.AnalyticsEvent, error) {
	return f.events, f.eventsErr
}

func (f *fakeRepo) StoreReleases(_ context.Context, marketplace model.Marketplace) ([]model.StoreRelease, error) {
	switch marketplace {
	case model.MarketplaceAppStore:
		return f.appStore, f.appStoreErr
	case model.MarketplacePlayStore:
		return f.playStore, f.playStoreErr
	default:
		return nil, storage.ErrUnknownSource
	}
}

func (f *fakeRepo) ReplaceConversionActions(_ context.Context, rows []model.ConversionAction) error {
	f.actions = rows
	return nil
}

func (f *fakeRepo) AppendAnalyticsEvents(_ context.Context, rows []model.AnalyticsEvent) error {
	f.events = append(f.events, rows...)
	return nil
}

func (f *fakeRepo) AppendStoreReleases(_ context.Context, marketplace model.Marketplace, rows []model.StoreRelease) error {
	if marketplace == model.MarketplaceAppStore {
		f.appStore = append(f.appStore, rows...)
	} else {
		f.playStore = append(f.playStore, rows...)
	}
	return nil
}

func (f *fakeRepo) WriteAlerts(_ context.Context, alerts []model.Alert) (bool, error) {
	if f.writeErr != nil {
		return false, f.writeErr
	}
	if len(alerts) == 0 {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, alerts)
	return true, nil
}

func (f *fakeRepo) AlertsForAppSince(context.Context, string, time.Time) ([]model.Alert, error) {
	return nil, nil
}

func (f *fakeRepo) LastRun(_ context.Context, name, taskType string) (time.Time, error) {
	ts, ok := f.lastRuns[name+"/"+taskType]
	if !ok {
		return time.Time{}, storage.ErrNoRun
	}
	return ts, nil
}

func (f *fakeRepo) UpdateLastRun(_ context.Context, name, taskType string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRuns[name+"/"+taskType] = time.Now()
	return nil
}

// recordLogger counts log calls per level so tests can assert that a
// degraded path was reported.
type recordLogger struct {
	mu       sync.Mutex
	errCount int
	warnCnt  int
}

func (l *recordLogger) errors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errCount
}

func (l *recordLogger) Debug(context.Context, ...any)          {}
func (l *recordLogger) Debugf(context.Context, string, ...any) {}
func (l *recordLogger) Info(context.Context, ...any)           {}
func (l *recordLogger) Infof(context.Context, string, ...any)  {}
func (l *recordLogger) Warn(context.Context, ...any) {
	l.mu.Lock()
	l.warnCnt++
	l.mu.Unlock()
}
func (l *recordLogger) Warnf(context.Context, string, ...any) {
	l.mu.Lock()
	l.warnCnt++
	l.mu.Unlock()
}
func (l *recordLogger) Error(context.Context, ...any) {
	l.mu.Lock()
	l.errCount++
	l.mu.Unlock()
}
func (l *recordLogger) Errorf(context.Context, string, ...any) {
	l.mu.Lock()
	l.errCount++
	l.mu.Unlock()
}
func (l *recordLogger) Fatal(context.Context, ...any)          {}
func (l *recordLogger) Fatalf(context.Context, string, ...any) {}
