package discord

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"conversion-guard/pkg/log"
)

type IDiscord interface {
	SendMessage(ctx context.Context, content string) error
	SendEmbed(ctx context.Context, options MessageOptions) error
	SendError(ctx context.Context, title, description string) error
	SendInfo(ctx context.Context, title, description string) error
	Close() error
}

var errWebhookRequired = errors.New("discord: webhook URL is required")

// DefaultConfig returns the default Discord config.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		RetryCount:      DefaultRetryCount,
		RetryDelay:      DefaultRetryDelay,
		DefaultUsername: DefaultUsername,
	}
}

// New builds a webhook client for the given URL. Logger may be nil, in
// which case retry chatter is dropped.
func New(l log.Logger, webhookURL string) (IDiscord, error) {
	if webhookURL == "" {
		return nil, errWebhookRequired
	}
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return nil, errors.New("discord: invalid webhook URL")
	}

	cfg := DefaultConfig()
	return &discordImpl{
		l:          l,
		webhookURL: webhookURL,
		config:     cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}, nil
}
