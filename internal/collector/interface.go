// Package collector defines the contract for source collectors: pull rows
// from one external source, normalize them, and persist them for rule
// evaluation. Real API-backed collectors live outside this repository;
// snapshot collectors here replay captured rows for local runs and tests.
package collector

import (
	"context"
	"fmt"
	"time"

	"conversion-guard/internal/model"
)

// ConnectorAppID is the app id connection alerts are filed under, keeping
// source-reachability problems out of per-app digests.
const ConnectorAppID = "Connector"

// Collector pulls data from one source and writes it through the storage
// layer. Collect covers the whole pull-normalize-save cycle; the run marker
// is the runner's job.
type Collector interface {
	Name() string
	Collect(ctx context.Context) error
}

// ConnectionAlert builds the alert a collector files when it cannot reach
// its source. id distinguishes sub-resources of one collector, e.g. a
// single inaccessible account.
func ConnectionAlert(name, id string, err error) model.Alert {
	return model.NewAlert(
		ConnectorAppID,
		name,
		"Connector missing permissions",
		map[string]string{
			"event_name": "connector_error",
			"error":      err.Error(),
		},
		fmt.Sprintf("%s_%s_connector_error", name, id),
		time.Now(),
	)
}
