package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatSourceApi       = "api"
	ChatSourceSlack     = "slack"
	ChatSourcePagerDuty = "pagerduty"
)

// Chat owns its messages (cascade delete). WebhookExternalId correlates
// repeated external events (PagerDuty incident id, Slack thread ts) to
// one conversation.
type Chat struct {
	Id                uuid.UUID
	AssistantId       uuid.UUID
	UserId            uuid.UUID
	Title             string
	Source            string
	WebhookExternalId *string
	SlackChannel      string
	StartedByBot      bool
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
