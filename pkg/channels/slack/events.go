package slack

import (
	"encoding/json"
	"regexp"
	"strings"

	"knowledge-assistant-be/pkg/apperr"
)

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// StripMentions removes user mention tags like <@U0ABC123> from text and
// trims the leftover whitespace. App mentions always carry at least one.
func StripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

const (
	EnvelopeURLVerification = "url_verification"
	EnvelopeEventCallback   = "event_callback"

	EventMessage    = "message"
	EventAppMention = "app_mention"
)

// Envelope is the outer payload delivered to the events endpoint.
type Envelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	TeamId    string `json:"team_id"`
	Event     Event  `json:"event"`
}

// Event is the inner message event. BotId is set on messages posted by
// any bot, including this assistant.
type Event struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
	Channel  string `json:"channel"`
	User     string `json:"user"`
	BotId    string `json:"bot_id"`
	Text     string `json:"text"`
	Ts       string `json:"ts"`
	ThreadTs string `json:"thread_ts"`
}

// ThreadKey returns the timestamp identifying the thread this event
// belongs to: the parent ts for replies, the event's own ts otherwise.
func (e Event) ThreadKey() string {
	if e.ThreadTs != "" {
		return e.ThreadTs
	}
	return e.Ts
}

// IsFromBot reports whether the event was produced by a bot user.
func (e Event) IsFromBot() bool {
	return e.BotId != "" || e.Subtype == "bot_message"
}

func ParseEnvelope(body []byte) (*Envelope, error) {
	const op = "slack.ParseEnvelope"

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Parse(op, "failed to decode event payload", err)
	}
	if env.Type == "" {
		return nil, apperr.Parse(op, "missing envelope type", nil)
	}
	return &env, nil
}
