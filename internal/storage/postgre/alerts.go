package postgres

import (
	"context"
	"time"

	"github.com/friendsofgo/errors"

	"conversion-guard/internal/model"
	"conversion-guard/internal/storage"
)

// WriteAlerts appends alerts to the alert log. Inserts conflict on
// alert_id and are dropped silently, which keeps the log set-like for a
// violation that persists across runs. An empty list is a no-op and
// returns false so callers can tell "nothing to write" from a failed write.
func (r *implRepository) WriteAlerts(ctx context.Context, alerts []model.Alert) (bool, error) {
	if len(alerts) == 0 {
		return false, nil
	}

	for _, alert := range alerts {
		if !alert.Valid() {
			return false, errors.Wrapf(storage.ErrInvalidAlert, "alert_id=%q", alert.AlertID)
		}
	}

	for _, alert := range alerts {
		triggerValue, err := alert.EncodeTriggerValue()
		if err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.WriteAlerts.EncodeTriggerValue: %v", err)
			return false, err
		}

		ts := alert.Timestamp
		if ts.IsZero() {
			ts = r.clock()
		}

		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO `+storage.AlertsTable+`
				(app_id, rule_name, trigger, trigger_value, alert_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (alert_id) DO NOTHING`,
			alert.AppID, alert.RuleName, alert.Trigger, triggerValue,
			alert.AlertID, ts); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.WriteAlerts.Insert: %v", err)
			return false, asStorageErr(err)
		}
	}
	return true, nil
}

func (r *implRepository) AlertsForAppSince(ctx context.Context, appID string, since time.Time) ([]model.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT app_id, rule_name, trigger, trigger_value, alert_id, created_at
		FROM `+storage.AlertsTable+`
		WHERE app_id = $1 AND created_at > $2
		ORDER BY created_at`,
		appID, since)
	if err != nil {
		r.l.Errorf(ctx, "internal.storage.postgres.AlertsForAppSince.Query: %v", err)
		return nil, asStorageErr(err)
	}
	defer rows.Close()

	var res []model.Alert
	for rows.Next() {
		var alert model.Alert
		var triggerValue string
		if err := rows.Scan(&alert.AppID, &alert.RuleName, &alert.Trigger,
			&triggerValue, &alert.AlertID, &alert.Timestamp); err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.AlertsForAppSince.Scan: %v", err)
			return nil, err
		}
		alert.TriggerValue, err = model.DecodeTriggerValue(triggerValue)
		if err != nil {
			r.l.Errorf(ctx, "internal.storage.postgres.AlertsForAppSince.DecodeTriggerValue: %v", err)
			return nil, err
		}
		res = append(res, alert)
	}
	return res, rows.Err()
}
