package collector

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/friendsofgo/errors"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
)

// Snapshot holds captured source rows, one slice per source table. It is
// the on-disk format the snapshot collectors replay.
type Snapshot struct {
	ConversionActions []model.ConversionAction `json:"conversion_actions"`
	AnalyticsEvents   []model.AnalyticsEvent   `json:"analytics_events"`
	AppStoreReleases  []model.StoreRelease     `json:"app_store_releases"`
	PlayStoreReleases []model.StoreRelease     `json:"play_store_releases"`
}

// LoadSnapshot reads a snapshot file from disk.
func LoadSnapshot(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "internal.collector.LoadSnapshot.ReadFile")
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, errors.Wrap(err, "internal.collector.LoadSnapshot.Unmarshal")
	}
	return snap, nil
}

// AdsSnapshotCollector replays captured ads rows. The ads table is
// overwritten on every run: it describes the currently configured
// conversion surface, not a history.
type AdsSnapshotCollector struct {
	snap Snapshot
	repo storage.Repository
}

func NewAdsSnapshotCollector(snap Snapshot, repo storage.Repository) *AdsSnapshotCollector {
	return &AdsSnapshotCollector{snap: snap, repo: repo}
}

func (c *AdsSnapshotCollector) Name() string { return "ads-collector" }

func (c *AdsSnapshotCollector) Collect(ctx context.Context) error {
	rows := make([]model.ConversionAction, len(c.snap.ConversionActions))
	for i, action := range c.snap.ConversionActions {
		if action.OS == "" {
			action.OS = model.DeriveOS(action.ActionType)
		}
		if action.UID == "" {
			action.UID = model.BuildUID(action.OS, action.PropertyID, action.EventName)
		}
		rows[i] = action
	}
	return c.repo.ReplaceConversionActions(ctx, rows)
}

// AnalyticsSnapshotCollector replays captured analytics rows. Analytics
// rows accumulate: each run appends its observations.
type AnalyticsSnapshotCollector struct {
	snap Snapshot
	repo storage.Repository
	now  func() time.Time
}

func NewAnalyticsSnapshotCollector(snap Snapshot, repo storage.Repository) *AnalyticsSnapshotCollector {
	return &AnalyticsSnapshotCollector{snap: snap, repo: repo, now: time.Now}
}

func (c *AnalyticsSnapshotCollector) Name() string { return "analytics-collector" }

func (c *AnalyticsSnapshotCollector) Collect(ctx context.Context) error {
	rows := make([]model.AnalyticsEvent, len(c.snap.AnalyticsEvents))
	for i, event := range c.snap.AnalyticsEvents {
		if event.UID == "" {
			event.UID = model.BuildUID(event.OS, event.PropertyID, event.EventName)
		}
		if event.DateAdded.IsZero() {
			event.DateAdded = c.now()
		}
		rows[i] = event
	}
	return c.repo.AppendAnalyticsEvents(ctx, rows)
}

// StoreSnapshotCollector replays captured marketplace rows for one feed.
type StoreSnapshotCollector struct {
	marketplace model.Marketplace
	snap        Snapshot
	repo        storage.Repository
	now         func() time.Time
}

func NewStoreSnapshotCollector(marketplace model.Marketplace, snap Snapshot, repo storage.Repository) *StoreSnapshotCollector {
	return &StoreSnapshotCollector{marketplace: marketplace, snap: snap, repo: repo, now: time.Now}
}

func (c *StoreSnapshotCollector) Name() string {
	if c.marketplace == model.MarketplaceAppStore {
		return "app-store-collector"
	}
	return "play-store-collector"
}

func (c *StoreSnapshotCollector) Collect(ctx context.Context) error {
	var src []model.StoreRelease
	if c.marketplace == model.MarketplaceAppStore {
		src = c.snap.AppStoreReleases
	} else {
		src = c.snap.PlayStoreReleases
	}

	rows := make([]model.StoreRelease, len(src))
	for i, release := range src {
		if release.Timestamp.IsZero() {
			release.Timestamp = c.now()
		}
		rows[i] = release
	}
	return c.repo.AppendStoreReleases(ctx, c.marketplace, rows)
}

// FromSnapshot builds the full collector set for one snapshot, in run order.
func FromSnapshot(snap Snapshot, repo storage.Repository) []Collector {
	return []Collector{
		NewAdsSnapshotCollector(snap, repo),
		NewAnalyticsSnapshotCollector(snap, repo),
		NewStoreSnapshotCollector(model.MarketplaceAppStore, snap, repo),
		NewStoreSnapshotCollector(model.MarketplacePlayStore, snap, repo),
	}
}
