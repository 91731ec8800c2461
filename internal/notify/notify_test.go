package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"conversion-guard/internal/model"
	"conversion-guard/pkg/discord"
	"conversion-guard/pkg/mailer"
)

var testAlert = model.Alert{
	AppID:        "com.x.y",
	RuleName:     "IntervalEventsRule",
	Trigger:      "Missing event for interval",
	TriggerValue: map[string]string{"Event Name": "purchase", "Missing for": "24"},
	AlertID:      "IntervalEventsRule_com.x.y_purchase_24",
	Timestamp:    time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC),
}

func TestBody(t *testing.T) {
	body := Body("com.x.y", []model.Alert{testAlert})

	assert.Contains(t, body, "app com.x.y")
	assert.Contains(t, body, "Missing event for interval")
	assert.Contains(t, body, `"Event Name":"purchase"`)
	assert.Contains(t, body, "2024-08-01T12:00:00Z")
}

type fakeMailer struct {
	sent    []mailer.Message
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Close() error { return nil }

func TestEmailNotifier(t *testing.T) {
	m := &fakeMailer{}
	n := NewEmailNotifier(m, map[string][]string{"com.x.y": {"dev@example.com"}})

	assert.Equal(t, "Email", n.Name())

	err := n.Notify(context.Background(), "com.x.y", []model.Alert{testAlert})
	assert.NoError(t, err)
	assert.Len(t, m.sent, 1)
	assert.Equal(t, "Alerts for com.x.y", m.sent[0].Subject)
	assert.Equal(t, []string{"dev@example.com"}, m.sent[0].To)
}

func TestEmailNotifier_NoRecipients(t *testing.T) {
	n := NewEmailNotifier(&fakeMailer{}, nil)

	err := n.Notify(context.Background(), "com.x.y", []model.Alert{testAlert})
	assert.Error(t, err)
}

type fakeDiscord struct {
	embeds []discord.MessageOptions
}

func (f *fakeDiscord) SendMessage(context.Context, string) error { return nil }
func (f *fakeDiscord) SendEmbed(_ context.Context, options discord.MessageOptions) error {
	f.embeds = append(f.embeds, options)
	return nil
}
func (f *fakeDiscord) SendError(context.Context, string, string) error { return nil }
func (f *fakeDiscord) SendInfo(context.Context, string, string) error  { return nil }
func (f *fakeDiscord) Close() error                                    { return nil }

func TestDiscordNotifier(t *testing.T) {
	d := &fakeDiscord{}
	n := NewDiscordNotifier(d)

	assert.Equal(t, "Discord", n.Name())

	err := n.Notify(context.Background(), "com.x.y", []model.Alert{testAlert})
	assert.NoError(t, err)
	assert.Len(t, d.embeds, 1)
	assert.Equal(t, "Alerts for com.x.y", d.embeds[0].Title)
	assert.Len(t, d.embeds[0].Fields, 1)
	assert.Equal(t, "Missing event for interval", d.embeds[0].Fields[0].Name)
}
