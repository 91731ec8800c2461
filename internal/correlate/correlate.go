// Package correlate joins the ads and analytics sources on the composed
// uid key so analytics rows can be traced back to the conversion action an
// advertiser configured, recovering the app id the analytics source lacks.
package correlate

import "conversion-guard/internal/model"

// UIDSet is a deduplicated collection of correlation keys.
type UIDSet map[string]struct{}

// Contains reports membership.
func (s UIDSet) Contains(uid string) bool {
	_, ok := s[uid]
	return ok
}

// UIDs returns the set of uid values from ads-source rows belonging to the
// monitored apps.
func UIDs(appIDs []string, actions []model.ConversionAction) UIDSet {
	monitored := make(map[string]struct{}, len(appIDs))
	for _, id := range appIDs {
		monitored[id] = struct{}{}
	}

	set := make(UIDSet)
	for _, action := range actions {
		if _, ok := monitored[action.AppID]; ok {
			set[action.UID] = struct{}{}
		}
	}
	return set
}

// FilterByUIDs keeps only analytics rows whose uid is in the set.
func FilterByUIDs(uids UIDSet, events []model.AnalyticsEvent) []model.AnalyticsEvent {
	var res []model.AnalyticsEvent
	for _, event := range events {
		if uids.Contains(event.UID) {
			res = append(res, event)
		}
	}
	return res
}

// AddAppIDs equi-joins analytics rows with ads rows on uid, carrying the
// ads-side app id onto each match. Analytics rows whose uid never appears
// on the ads side are dropped: only ad-defined conversions are evaluated.
func AddAppIDs(actions []model.ConversionAction, events []model.AnalyticsEvent) []model.ConversionEvent {
	appIDByUID := make(map[string]string, len(actions))
	for _, action := range actions {
		appIDByUID[action.UID] = action.AppID
	}

	var res []model.ConversionEvent
	for _, event := range events {
		appID, ok := appIDByUID[event.UID]
		if !ok {
			continue
		}
		res = append(res, model.ConversionEvent{AnalyticsEvent: event, AppID: appID})
	}
	return res
}
