package rule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"conversion-guard/internal/model"
)

func newVersionRule(repo *fakeRepo, l *recordLogger, appIDs ...string) *VersionEventsRule {
	r := NewVersionEventsRule(Config{AppIDs: appIDs}, repo, l)
	r.now = func() time.Time { return testNow }
	return r
}

// versionFixture seeds the repo with an android app whose analytics data
// shows versions 1.0.0 {purchase, first_open} and 1.1.0 {first_open}: the
// generic diff should find "purchase" missing from 1.1.0.
func versionFixture(os string) *fakeRepo {
	repo := newFakeRepo()
	appID := "com.x.y"
	var propertyID int64 = 555

	actions := []model.ConversionAction{}
	for _, name := range []string{"purchase", "first_open"} {
		actions = append(actions, model.ConversionAction{
			AppID:      appID,
			PropertyID: propertyID,
			EventName:  name,
			OS:         os,
			UID:        model.BuildUID(os, propertyID, name),
		})
	}
	repo.actions = actions

	newRow := func(name, version string, dateAdded time.Time) model.AnalyticsEvent {
		return model.AnalyticsEvent{
			PropertyID: propertyID,
			OS:         os,
			AppVersion: version,
			EventName:  name,
			EventCount: 10,
			UID:        model.BuildUID(os, propertyID, name),
			DateAdded:  dateAdded,
		}
	}
	repo.events = []model.AnalyticsEvent{
		newRow("purchase", "1.0.0", testNow.AddDate(0, 0, -10)),
		newRow("first_open", "1.0.0", testNow.AddDate(0, 0, -10)),
		newRow("first_open", "1.1.0", testNow.AddDate(0, 0, -3)),
	}
	return repo
}

func TestVersionCheckRule_MissingRequiredSources(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeRepo)
	}{
		{
			name:  "analytics absent",
			setup: func(f *fakeRepo) { f.eventsErr = assert.AnError },
		},
		{
			name:  "ads absent",
			setup: func(f *fakeRepo) { f.actionsErr = assert.AnError },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := versionFixture(model.OSAndroid)
			tt.setup(repo)

			l := &recordLogger{}
			r := newVersionRule(repo, l, "com.x.y")
			violations := r.CheckRule(r.GetData(context.Background()))

			assert.Empty(t, violations)
			assert.Greater(t, l.errors(), 0)
		})
	}
}

func TestVersionCheckRule_NoMarketplaceDataGenericDiff(t *testing.T) {
	repo := versionFixture(model.OSAndroid)

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	assert.Equal(t, []Violation{VersionEvent{
		EventName: "purchase",
		AppID:     "com.x.y",
		CurVer:    "1.1.0",
		PrevVer:   "1.0.0",
	}}, violations)
}

func TestVersionCheckRule_MarketplaceFeedsAbsentStillDiffs(t *testing.T) {
	repo := versionFixture(model.OSAndroid)
	repo.appStoreErr = assert.AnError
	repo.playStoreErr = assert.AnError

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	assert.Len(t, violations, 1)
	assert.Equal(t, "purchase", violations[0].(VersionEvent).EventName)
}

func TestVersionCheckRule_AppStoreReleasePastGrace(t *testing.T) {
	repo := versionFixture(model.OSIOS)
	// Analytics first saw 1.1.0 three days ago; the store shows 1.2.0
	// observed now. Gap is well past the 24h grace period.
	repo.appStore = []model.StoreRelease{{
		AppID:     "com.x.y",
		Version:   "1.2.0",
		Timestamp: testNow.Add(-time.Hour),
	}}

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	assert.Equal(t, []Violation{VersionEvent{
		EventName: FirstOpenEvent,
		AppID:     "com.x.y",
		CurVer:    "1.2.0",
		PrevVer:   "1.1.0",
	}}, violations)
}

func TestVersionCheckRule_AppStoreFreshReleaseFallsThrough(t *testing.T) {
	repo := versionFixture(model.OSIOS)
	// Store observation only 12h after analytics first saw 1.1.0: too
	// fresh to judge, so the ordinary version diff applies instead.
	repo.appStore = []model.StoreRelease{{
		AppID:     "com.x.y",
		Version:   "1.2.0",
		Timestamp: testNow.AddDate(0, 0, -3).Add(12 * time.Hour),
	}}

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	assert.Equal(t, []Violation{VersionEvent{
		EventName: "purchase",
		AppID:     "com.x.y",
		CurVer:    "1.1.0",
		PrevVer:   "1.0.0",
	}}, violations)
}

func TestVersionCheckRule_AppStoreOlderVersionNoRelease(t *testing.T) {
	repo := versionFixture(model.OSIOS)
	repo.appStore = []model.StoreRelease{{
		AppID:     "com.x.y",
		Version:   "1.1.0",
		Timestamp: testNow.Add(-time.Hour),
	}}

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	// Store matches the analytics version: no release, generic diff.
	assert.Len(t, violations, 1)
	assert.Equal(t, "purchase", violations[0].(VersionEvent).EventName)
}

func TestVersionCheckRule_PlayStoreObservationProxy(t *testing.T) {
	tests := []struct {
		name      string
		observed  time.Time
		wantEvent string
		wantCur   string
	}{
		{
			name:      "observed past grace period",
			observed:  testNow.Add(-time.Hour), // ~3d after 1.1.0 appeared
			wantEvent: FirstOpenEvent,
			wantCur:   "42",
		},
		{
			name:      "observed within grace period",
			observed:  testNow.AddDate(0, 0, -3).Add(6 * time.Hour),
			wantEvent: "purchase",
			wantCur:   "1.1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := versionFixture(model.OSAndroid)
			repo.playStore = []model.StoreRelease{{
				AppID:     "com.x.y",
				Version:   "42",
				Track:     "production",
				Timestamp: tt.observed,
			}}

			r := newVersionRule(repo, &recordLogger{}, "com.x.y")
			violations := r.CheckRule(r.GetData(context.Background()))

			assert.Len(t, violations, 1)
			event := violations[0].(VersionEvent)
			assert.Equal(t, tt.wantEvent, event.EventName)
			assert.Equal(t, tt.wantCur, event.CurVer)
		})
	}
}

func TestVersionCheckRule_StaleStoreObservationIgnored(t *testing.T) {
	repo := versionFixture(model.OSAndroid)
	// Outside the 7-day store lookback: the release row must not count.
	repo.playStore = []model.StoreRelease{{
		AppID:     "com.x.y",
		Version:   "42",
		Timestamp: testNow.AddDate(0, 0, -30),
	}}

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	assert.Len(t, violations, 1)
	assert.Equal(t, "purchase", violations[0].(VersionEvent).EventName)
}

func TestVersionCheckRule_NonSemverVersionsExcluded(t *testing.T) {
	repo := versionFixture(model.OSAndroid)
	repo.events = append(repo.events, model.AnalyticsEvent{
		PropertyID: 555,
		OS:         model.OSAndroid,
		AppVersion: "Varies with device",
		EventName:  "purchase",
		UID:        model.BuildUID(model.OSAndroid, 555, "purchase"),
		DateAdded:  testNow.AddDate(0, 0, -1),
	})

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	// The malformed version is ignored for ordering: 1.1.0 stays current.
	assert.Len(t, violations, 1)
	assert.Equal(t, "1.1.0", violations[0].(VersionEvent).CurVer)
}

func TestVersionCheckRule_NoValidVersions(t *testing.T) {
	repo := versionFixture(model.OSAndroid)
	for i := range repo.events {
		repo.events[i].AppVersion = "build-7"
	}

	r := newVersionRule(repo, &recordLogger{}, "com.x.y")
	violations := r.CheckRule(r.GetData(context.Background()))

	assert.Empty(t, violations)
}

func TestVersionCreateAlerts(t *testing.T) {
	r := newVersionRule(newFakeRepo(), &recordLogger{}, "com.x.y")
	violations := []Violation{
		VersionEvent{EventName: "test_event", AppID: "com.test.app", CurVer: "1.1.0", PrevVer: "1.0.0"},
		VersionEvent{EventName: "another_test_event", AppID: "1072235449", CurVer: "2.0.1", PrevVer: "2.0.0"},
	}

	alerts := r.CreateAlerts(violations)

	assert.Len(t, alerts, 2)
	assert.Equal(t, "VersionEventsRule_com.test.app_test_event_1.1.0_1.0.0", alerts[0].AlertID)
	assert.Equal(t, "VersionEventsRule_1072235449_another_test_event_2.0.1_2.0.0", alerts[1].AlertID)
	assert.Equal(t, "Missing event between versions", alerts[0].Trigger)
	assert.Equal(t, map[string]string{
		"Event Name":           "test_event",
		"Missing from Version": "1.1.0",
		"Previous Version":     "1.0.0",
	}, alerts[0].TriggerValue)
}
