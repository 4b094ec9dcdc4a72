package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback"}`)
	now := strconv.FormatInt(time.Now().Unix(), 10)

	tests := []struct {
		name      string
		timestamp string
		signature string
		wantErr   bool
	}{
		{
			name:      "valid signature",
			timestamp: now,
			signature: signBody(secret, now, body),
			wantErr:   false,
		},
		{
			name:      "wrong secret",
			timestamp: now,
			signature: signBody("other-secret", now, body),
			wantErr:   true,
		},
		{
			name:      "stale timestamp",
			timestamp: strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10),
			signature: signBody(secret, strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10), body),
			wantErr:   true,
		},
		{
			name:      "garbage timestamp",
			timestamp: "not-a-number",
			signature: "v0=deadbeef",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(secret, "", "")
			err := c.VerifySignature(tt.timestamp, tt.signature, body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifySignatureTamperedBody(t *testing.T) {
	secret := "topsecret"
	now := strconv.FormatInt(time.Now().Unix(), 10)
	sig := signBody(secret, now, []byte("original"))

	c := NewClient(secret, "", "")
	err := c.VerifySignature(now, sig, []byte("tampered"))
	assert.Error(t, err)
}

func TestParseEnvelope(t *testing.T) {
	body := []byte(`{"type":"event_callback","event":{"type":"message","channel":"C123","user":"U456","text":"hello","ts":"1700000000.000100","thread_ts":"1700000000.000001"}}`)

	env, err := ParseEnvelope(body)
	require.NoError(t, err)

	assert.Equal(t, EnvelopeEventCallback, env.Type)
	assert.Equal(t, "C123", env.Event.Channel)
	assert.Equal(t, "1700000000.000001", env.Event.ThreadKey())
	assert.False(t, env.Event.IsFromBot())
}

func TestEventThreadKeyFallsBackToTs(t *testing.T) {
	e := Event{Ts: "1700000000.000100"}
	assert.Equal(t, "1700000000.000100", e.ThreadKey())
}

func TestStripMentions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading mention", "<@U0BOT> what is the runbook?", "what is the runbook?"},
		{"multiple mentions", "<@U0BOT> ping <@U0ABC123> please", "ping  please"},
		{"no mention", "plain question", "plain question"},
		{"mention only", "<@U0BOT>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMentions(tt.in))
		})
	}
}

func TestEventIsFromBot(t *testing.T) {
	assert.True(t, Event{BotId: "B001"}.IsFromBot())
	assert.True(t, Event{Subtype: "bot_message"}.IsFromBot())
	assert.False(t, Event{User: "U001"}.IsFromBot())
}
