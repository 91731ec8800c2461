package postgres

import (
	"context"
	"database/sql"

	"github.com/friendsofgo/errors"
	"github.com/lib/pq"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
)

// undefinedTable is the postgres error code raised when a relation does
// not exist.
const undefinedTable = "42P01"

func asStorageErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return errors.Wrap(storage.ErrMissingTable, pqErr.Message)
	}
	return err
}

func (r *implRepository) ConversionActions(ctx context.Context) ([]model.ConversionAction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT app_id, property_id, property_name, event_name, action_type,
		       last_conversion_date, os, uid
		FROM `+storage.SourceAds.TableName())
	if err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.ConversionActions.Query: %v", err)
		return nil, asStorageErr(err)
	}
	defer rows.Close()

	var res []model.ConversionAction
	for rows.Next() {
		var row model.ConversionAction
		if err := rows.Scan(&row.AppID, &row.PropertyID, &row.PropertyName,
			&row.EventName, &row.ActionType, &row.LastConversionDate,
			&row.OS, &row.UID); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.ConversionActions.Scan: %v", err)
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func (r *implRepository) AnalyticsEvents(ctx context.Context) ([]model.AnalyticsEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT property_id, os, app_version, event_name, event_count, uid, date_added
		FROM `+storage.SourceAnalytics.TableName())
	if err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.AnalyticsEvents.Query: %v", err)
		return nil, asStorageErr(err)
	}
	defer rows.Close()

	var res []model.AnalyticsEvent
	for rows.Next() {
		var row model.AnalyticsEvent
		if err := rows.Scan(&row.PropertyID, &row.OS, &row.AppVersion,
			&row.EventName, &row.EventCount, &row.UID, &row.DateAdded); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.AnalyticsEvents.Scan: %v", err)
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func releaseSource(marketplace model.Marketplace) (storage.Source, error) {
	switch marketplace {
	case model.MarketplaceAppStore:
		return storage.SourceAppStore, nil
	case model.MarketplacePlayStore:
		return storage.SourcePlayStore, nil
	default:
		return 0, storage.ErrUnknownSource
	}
}

func (r *implRepository) StoreReleases(ctx context.Context, marketplace model.Marketplace) ([]model.StoreRelease, error) {
	src, err := releaseSource(marketplace)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT app_id, version, track, observed_at
		FROM `+src.TableName())
	if err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.StoreReleases.Query: %v", err)
		return nil, asStorageErr(err)
	}
	defer rows.Close()

	var res []model.StoreRelease
	for rows.Next() {
		var row model.StoreRelease
		var track sql.NullString
		if err := rows.Scan(&row.AppID, &row.Version, &track, &row.Timestamp); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.StoreReleases.Scan: %v", err)
			return nil, err
		}
		row.Track = track.String
		res = append(res, row)
	}
	return res, rows.Err()
}

func (r *implRepository) ReplaceConversionActions(ctx context.Context, rows []model.ConversionAction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin replace")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE `+storage.SourceAds.TableName()); err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.ReplaceConversionActions.Truncate: %v", err)
		return asStorageErr(err)
	}

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO `+storage.SourceAds.TableName()+`
				(app_id, property_id, property_name, event_name, action_type,
				 last_conversion_date, os, uid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			row.AppID, row.PropertyID, row.PropertyName, row.EventName,
			row.ActionType, row.LastConversionDate, row.OS, row.UID); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.ReplaceConversionActions.Insert: %v", err)
			return err
		}
	}
	return tx.Commit()
}

func (r *implRepository) AppendAnalyticsEvents(ctx context.Context, rows []model.AnalyticsEvent) error {
	for _, row := range rows {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO `+storage.SourceAnalytics.TableName()+`
				(property_id, os, app_version, event_name, event_count, uid, date_added)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.PropertyID, row.OS, row.AppVersion, row.EventName,
			row.EventCount, row.UID, row.DateAdded); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.AppendAnalyticsEvents.Insert: %v", err)
			return asStorageErr(err)
		}
	}
	return nil
}

func (r *implRepository) AppendStoreReleases(ctx context.Context, marketplace model.Marketplace, rows []model.StoreRelease) error {
	src, err := releaseSource(marketplace)
	if err != nil {
		return err
	}

	for _, row := range rows {
		track := sql.NullString{String: row.Track, Valid: row.Track != ""}
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO `+src.TableName()+`
				(app_id, version, track, observed_at)
			VALUES ($1, $2, $3, $4)`,
			row.AppID, row.Version, track, row.Timestamp); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.AppendStoreReleases.Insert: %v", err)
			return asStorageErr(err)
		}
	}
	return nil
}
