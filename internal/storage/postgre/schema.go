package postgres

import (
	"context"

	"conversion-guard/internal/storage"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + storage.SourceAds.TableName() + ` (
		app_id               TEXT NOT NULL,
		property_id          BIGINT NOT NULL,
		property_name        TEXT NOT NULL DEFAULT '',
		event_name           TEXT NOT NULL,
		action_type          TEXT NOT NULL DEFAULT '',
		last_conversion_date TEXT NOT NULL DEFAULT '',
		os                   TEXT NOT NULL DEFAULT '',
		uid                  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + storage.SourceAnalytics.TableName() + ` (
		property_id BIGINT NOT NULL,
		os          TEXT NOT NULL DEFAULT '',
		app_version TEXT NOT NULL DEFAULT '',
		event_name  TEXT NOT NULL,
		event_count BIGINT NOT NULL DEFAULT 0,
		uid         TEXT NOT NULL,
		date_added  DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + storage.SourceAppStore.TableName() + ` (
		app_id      TEXT NOT NULL,
		version     TEXT NOT NULL,
		track       TEXT,
		observed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + storage.SourcePlayStore.TableName() + ` (
		app_id      TEXT NOT NULL,
		version     TEXT NOT NULL,
		track       TEXT,
		observed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + storage.AlertsTable + ` (
		app_id        TEXT NOT NULL,
		rule_name     TEXT NOT NULL,
		trigger       TEXT NOT NULL,
		trigger_value TEXT NOT NULL DEFAULT '{}',
		alert_id      TEXT NOT NULL PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + storage.RunLogTable + ` (
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_app_created
		ON ` + storage.AlertsTable + ` (app_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_run_log_name_type
		ON ` + storage.RunLogTable + ` (name, type, recorded_at DESC)`,
}

// EnsureSchema creates the engine's tables when they do not exist yet.
func (r *implRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.EnsureSchema.Exec: %v", err)
			return err
		}
	}
	return nil
}
