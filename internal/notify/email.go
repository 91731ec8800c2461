package notify

import (
	"context"

	"github.com/friendsofgo/errors"

	"conversion-guard/internal/model"
	"conversion-guard/pkg/mailer"
)

// EmailTaskName is the run-log name used to gate email digests; together
// with type "service-<app_id>" it marks the last successful send per app.
const EmailTaskName = "Email"

// EmailNotifier sends digests through the mail relay, to each app's
// configured recipients.
type EmailNotifier struct {
	mailer     mailer.IMailer
	recipients map[string][]string // app id -> emails
}

func NewEmailNotifier(m mailer.IMailer, recipients map[string][]string) *EmailNotifier {
	return &EmailNotifier{mailer: m, recipients: recipients}
}

func (n *EmailNotifier) Name() string { return EmailTaskName }

func (n *EmailNotifier) Notify(ctx context.Context, appID string, alerts []model.Alert) error {
	to := n.recipients[appID]
	if len(to) == 0 {
		return errors.Errorf("no recipients configured for app %s", appID)
	}
	return n.mailer.Send(ctx, mailer.Message{
		To:      to,
		Subject: Subject(appID),
		Body:    Body(appID, alerts),
	})
}
