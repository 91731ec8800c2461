package postgres

import (
	"context"
	"database/sql"
	"time"

	"conversion-guard/internal/storage"
)

func (r *implRepository) LastRun(ctx context.Context, name, taskType string) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT recorded_at
		FROM `+storage.RunLogTable+`
		WHERE name = $1 AND type = $2
		ORDER BY recorded_at DESC
		LIMIT 1`,
		name, taskType).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, storage.ErrNoRun
	}
	if err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.LastRun.Scan: %v", err)
		return time.Time{}, asStorageErr(err)
	}
	return ts, nil
}

func (r *implRepository) UpdateLastRun(ctx context.Context, name, taskType string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO `+storage.RunLogTable+` (name, type, recorded_at)
		VALUES ($1, $2, $3)`,
		name, taskType, r.clock()); err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.UpdateLastRun.Insert: %v", err)
		return asStorageErr(err)
	}
	return nil
}
