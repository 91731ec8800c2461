package notify

import (
	"context"
	"fmt"
	"time"

	"conversion-guard/internal/model"
	"conversion-guard/pkg/discord"
)

// DiscordTaskName is the run-log name gating discord digests.
const DiscordTaskName = "Discord"

// DiscordNotifier posts the digest as a webhook embed, one field per alert.
type DiscordNotifier struct {
	client discord.IDiscord
}

func NewDiscordNotifier(client discord.IDiscord) *DiscordNotifier {
	return &DiscordNotifier{client: client}
}

func (n *DiscordNotifier) Name() string { return DiscordTaskName }

func (n *DiscordNotifier) Notify(ctx context.Context, appID string, alerts []model.Alert) error {
	fields := make([]discord.EmbedField, 0, len(alerts))
	for _, alert := range alerts {
		detail, err := alert.EncodeTriggerValue()
		if err != nil {
			detail = "{}"
		}
		fields = append(fields, discord.EmbedField{
			Name:  alert.Trigger,
			Value: fmt.Sprintf("%s (%s)", detail, alert.Timestamp.Format(time.RFC3339)),
		})
	}

	return n.client.SendEmbed(ctx, discord.MessageOptions{
		Title:       Subject(appID),
		Description: fmt.Sprintf("%d new alerts", len(alerts)),
		Type:        discord.MessageTypeWarning,
		Fields:      fields,
		Timestamp:   time.Now(),
	})
}
