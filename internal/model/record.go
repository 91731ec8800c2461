package model

import (
	"fmt"
	"strings"
	"time"
)

// OS identifiers as they appear in source rows. The ads source derives the
// value from the conversion action type; the analytics source reports it
// directly.
const (
	OSAndroid = "ANDROID"
	OSIOS     = "IOS"
)

// ConversionAction is one row of the ads-source table. It describes a
// conversion event an advertiser configured for an app, i.e. the expected
// conversion surface. Rows are produced once per collector run and are
// immutable afterwards.
type ConversionAction struct {
	AppID              string
	PropertyID         int64
	PropertyName       string
	EventName          string
	ActionType         string
	LastConversionDate string
	OS                 string
	UID                string
}

// AnalyticsEvent is one row of the analytics-source table, one per
// (property, os, version, event) per collection run. Rows accumulate over
// time; DateAdded and AppVersion give temporal and version slicing.
type AnalyticsEvent struct {
	PropertyID int64
	OS         string
	AppVersion string
	EventName  string
	EventCount int64
	UID        string
	DateAdded  time.Time
}

// ConversionEvent is an analytics event joined back to the app it belongs
// to. The analytics source has no native app id; the join key recovers it
// from the ads source.
type ConversionEvent struct {
	AnalyticsEvent
	AppID string
}

// Marketplace distinguishes the two release feeds.
type Marketplace string

const (
	// MarketplaceAppStore rows carry a real semantic version string.
	MarketplaceAppStore Marketplace = "app_store"
	// MarketplacePlayStore rows carry an opaque, monotonically increasing
	// version code plus a release track.
	MarketplacePlayStore Marketplace = "play_store"
)

// StoreRelease is one observation of an app's released version in a
// marketplace feed. Track is only set for the package marketplace.
type StoreRelease struct {
	AppID     string
	Version   string
	Track     string
	Timestamp time.Time
}

// DeriveOS extracts the platform from a conversion action type. Action types
// embed the platform as a substring; anything else maps to empty.
func DeriveOS(actionType string) string {
	upper := strings.ToUpper(actionType)
	switch {
	case strings.Contains(upper, OSAndroid):
		return OSAndroid
	case strings.Contains(upper, OSIOS):
		return OSIOS
	default:
		return ""
	}
}

// BuildUID composes the correlation key shared by the ads and analytics
// sources: lower(os) + "_" + property id + "_" + event name.
func BuildUID(os string, propertyID int64, eventName string) string {
	return fmt.Sprintf("%s_%d_%s", strings.ToLower(os), propertyID, eventName)
}
