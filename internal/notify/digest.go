package notify

import (
	"fmt"
	"strings"
	"time"

	"conversion-guard/internal/model"
)

// Subject returns the digest subject line for an app.
func Subject(appID string) string {
	return "Alerts for " + appID
}

// Body renders the plain-text digest: one line per alert with the trigger,
// its structured detail and the alert timestamp.
func Body(appID string, alerts []model.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following alerts have been triggered in app %s:\n\n", appID)
	for _, alert := range alerts {
		detail, err := alert.EncodeTriggerValue()
		if err != nil {
			detail = "{}"
		}
		fmt.Fprintf(&b, "%s, %s, %s\n", alert.Trigger, detail, alert.Timestamp.Format(time.RFC3339))
	}
	return b.String()
}
