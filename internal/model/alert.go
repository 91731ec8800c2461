package model

import (
	"encoding/json"
	"time"
)

// Alert is one row of the alert log. AlertID is deterministic: it is built
// from the rule name and the violating entity's keys, never from randomness,
// so the same violation produces the same id on every run and the log can be
// treated as set-like by consumers.
type Alert struct {
	AppID        string
	RuleName     string
	Trigger      string
	TriggerValue map[string]string
	AlertID      string
	Timestamp    time.Time
}

// NewAlert builds an alert with the given deterministic id, stamped at now.
func NewAlert(appID, ruleName, trigger string, triggerValue map[string]string, alertID string, now time.Time) Alert {
	return Alert{
		AppID:        appID,
		RuleName:     ruleName,
		Trigger:      trigger,
		TriggerValue: triggerValue,
		AlertID:      alertID,
		Timestamp:    now,
	}
}

// Valid reports whether the alert carries the fields the alert log requires.
func (a Alert) Valid() bool {
	return a.AppID != "" && a.RuleName != "" && a.AlertID != ""
}

// EncodeTriggerValue renders the structured detail map as JSON for storage.
func (a Alert) EncodeTriggerValue() (string, error) {
	raw, err := json.Marshal(a.TriggerValue)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeTriggerValue parses a stored JSON detail map.
func DecodeTriggerValue(raw string) (map[string]string, error) {
	out := map[string]string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
