package storage

// Source enumerates the kinds of source tables collectors feed and rules
// consume. Handlers dispatch on these constants rather than raw table-name
// strings.
type Source int

const (
	SourceAds Source = iota
	SourceAnalytics
	SourceAppStore
	SourcePlayStore
)

var sourceTables = map[Source]string{
	SourceAds:       "collector_ads",
	SourceAnalytics: "collector_analytics",
	SourceAppStore:  "collector_app_store",
	SourcePlayStore: "collector_play_store",
}

// Table names owned by the engine itself.
const (
	AlertsTable = "alerts"
	RunLogTable = "run_log"
)

// TableName returns the physical table backing the source, or "" for an
// unknown source.
func (s Source) TableName() string {
	return sourceTables[s]
}

// String implements fmt.Stringer for logging.
func (s Source) String() string {
	switch s {
	case SourceAds:
		return "ads"
	case SourceAnalytics:
		return "analytics"
	case SourceAppStore:
		return "app_store"
	case SourcePlayStore:
		return "play_store"
	default:
		return "unknown"
	}
}
