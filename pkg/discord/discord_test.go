package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmbed(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, err := New(nil, srv.URL)
	require.NoError(t, err)
	defer d.Close()

	err = d.SendEmbed(context.Background(), MessageOptions{
		Title:       "Alerts for com.x.y",
		Description: "2 new alerts",
		Type:        MessageTypeWarning,
		Fields:      []EmbedField{{Name: "purchase", Value: "missing for 24h"}},
	})

	assert.NoError(t, err)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Alerts for com.x.y", got.Embeds[0].Title)
	assert.Equal(t, ColorWarning, got.Embeds[0].Color)
	assert.Equal(t, DefaultUsername, got.Username)
}

func TestSendMessage_TooLong(t *testing.T) {
	d, err := New(nil, "http://webhook.local")
	require.NoError(t, err)

	err = d.SendMessage(context.Background(), strings.Repeat("x", MaxMessageLength+1))
	assert.ErrorContains(t, err, "too long")
}

func TestSendEmbed_Truncation(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, err := New(nil, srv.URL)
	require.NoError(t, err)

	err = d.SendEmbed(context.Background(), MessageOptions{
		Title: strings.Repeat("t", MaxTitleLen+50),
	})

	assert.NoError(t, err)
	require.Len(t, got.Embeds, 1)
	assert.Len(t, got.Embeds[0].Title, MaxTitleLen)
	assert.True(t, strings.HasSuffix(got.Embeds[0].Title, "..."))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "")
	assert.Error(t, err)

	_, err = New(nil, "not a url")
	assert.Error(t, err)
}
