package service

import (
	"context"
	"strings"
	"testing"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/pkg/channels/pagerduty"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taglineChecker struct {
	tagline string
}

func (c taglineChecker) IsOwnNote(content string) bool {
	return c.tagline != "" && strings.Contains(content, c.tagline)
}

func newPagerDutyFixture(assistant *entity.Assistant, existingChat *entity.Chat) (IPagerDutyWebhookService, *fakeChatService) {
	assistants := &fakeAssistantRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error) {
			return assistant, nil
		},
	}
	chats := &fakeChatRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
			return existingChat, nil
		},
	}
	chatService := &fakeChatService{}
	svc := NewPagerDutyWebhookService(
		&fakeUowFactory{uow: &fakeUow{assistants: assistants, chats: chats}},
		chatService, taglineChecker{tagline: "- Knowledge Assistant"}, logger.NewNoopLogger(),
	)
	return svc, chatService
}

func TestPagerDutyTriggeredIncidentOpensChat(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: true}
	svc, chatService := newPagerDutyFixture(assistant, nil)

	evt := &pagerduty.WebhookEvent{
		EventType:    "incident.triggered",
		ResourceType: "incident",
		IncidentID:   "PINC123",
	}

	err := svc.HandleEvent(context.Background(), evt, []byte(`{"raw":true}`))

	require.NoError(t, err)
	require.Len(t, chatService.posted, 1)
	posted := chatService.posted[0]
	assert.Equal(t, entity.ChatSourcePagerDuty, posted.Source)
	assert.Equal(t, "PINC123", posted.ExternalId)
	assert.Contains(t, posted.Content, "PINC123")
	assert.Contains(t, posted.Content, "runbooks")
}

func TestPagerDutyLifecycleEventDedupesOnExistingChat(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: true}
	svc, chatService := newPagerDutyFixture(assistant, &entity.Chat{Id: uuid.New()})

	evt := &pagerduty.WebhookEvent{
		EventType:    "incident.escalated",
		ResourceType: "incident",
		IncidentID:   "PINC123",
	}

	err := svc.HandleEvent(context.Background(), evt, nil)

	require.NoError(t, err)
	assert.Empty(t, chatService.posted)
}

func TestPagerDutyHumanNoteAppendsToExistingChat(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: true}
	svc, chatService := newPagerDutyFixture(assistant, &entity.Chat{Id: uuid.New()})

	evt := &pagerduty.WebhookEvent{
		EventType:    "incident.annotated",
		ResourceType: "incident",
		IncidentID:   "PINC123",
		NoteContent:  "we suspect the failover never kicked in",
	}

	err := svc.HandleEvent(context.Background(), evt, nil)

	require.NoError(t, err)
	require.Len(t, chatService.posted, 1)
	assert.Equal(t, "we suspect the failover never kicked in", chatService.posted[0].Content)
}

func TestPagerDutyOwnNoteIsDropped(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: true}
	svc, chatService := newPagerDutyFixture(assistant, &entity.Chat{Id: uuid.New()})

	evt := &pagerduty.WebhookEvent{
		EventType:    "incident.annotated",
		ResourceType: "incident",
		IncidentID:   "PINC123",
		NoteContent:  "Check the failover runbook.\n\n- Knowledge Assistant",
	}

	err := svc.HandleEvent(context.Background(), evt, nil)

	require.NoError(t, err)
	assert.Empty(t, chatService.posted)
}

func TestPagerDutyIgnoredWithoutEnabledAssistant(t *testing.T) {
	svc, chatService := newPagerDutyFixture(nil, nil)

	evt := &pagerduty.WebhookEvent{
		EventType:    "incident.triggered",
		ResourceType: "incident",
		IncidentID:   "PINC123",
	}

	err := svc.HandleEvent(context.Background(), evt, nil)

	require.NoError(t, err)
	assert.Empty(t, chatService.posted)
}

func TestPagerDutyNilEventIsNoop(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: true}
	svc, chatService := newPagerDutyFixture(assistant, nil)

	require.NoError(t, svc.HandleEvent(context.Background(), nil, nil))
	assert.Empty(t, chatService.posted)
}
