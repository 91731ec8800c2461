// Package mailer is a client for the HTTP mail relay the alerting service
// sends digests through. The relay accepts a JSON body and fans out to the
// actual mail provider; this client only speaks to the relay.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"conversion-guard/pkg/log"
)

const (
	sendPath       = "/send-email"
	defaultTimeout = 30 * time.Second
	userAgent      = "ConversionGuard/1.0"
)

var errBaseURLRequired = errors.New("mailer: base URL is required")

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

type relayRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type IMailer interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

type mailerImpl struct {
	l       log.Logger
	baseURL string
	client  *http.Client
}

// New builds a relay client. Logger may be nil.
func New(l log.Logger, baseURL string) (IMailer, error) {
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	return &mailerImpl{
		l:       l,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}, nil
}

func (m *mailerImpl) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailer: no recipients")
	}

	payload := relayRequest{
		To:      strings.Join(msg.To, ", "),
		Subject: msg.Subject,
		Body:    msg.Body,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+sendPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("mail relay returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (m *mailerImpl) Close() error {
	if m.client != nil {
		m.client.CloseIdleConnections()
	}
	return nil
}
