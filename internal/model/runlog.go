package model

import "time"

// Task types recorded in the run log.
const (
	TaskTypeRule      = "rule"
	TaskTypeCollector = "collector"
)

// ServiceTaskType returns the run-log type used for per-app service
// executions, e.g. "service-com.example.app" for a sent alert digest.
func ServiceTaskType(appID string) string {
	return "service-" + appID
}

// RunLogEntry is one row of the run log: a timestamped marker that a named
// task completed. The log is append-only; readers always take the most
// recent entry for a (name, type) pair.
type RunLogEntry struct {
	Name      string
	Type      string
	Timestamp time.Time
}
