package service

import (
	"context"
	"testing"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/pkg/jobs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessageCreatesPlaceholderAndEnqueues(t *testing.T) {
	userId := uuid.New()
	chat := &entity.Chat{Id: uuid.New(), UserId: userId, Source: entity.ChatSourceApi}

	chats := &fakeChatRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
			return chat, nil
		},
	}
	messages := &fakeMessageRepo{}
	bus := &fakeBus{}

	svc := NewChatService(&fakeUowFactory{uow: &fakeUow{chats: chats, messages: messages}}, bus)

	res, err := svc.PostMessage(context.Background(), userId, &dto.PostMessageRequest{
		ChatId:  chat.Id,
		Content: "how do I roll back a deploy?",
	})

	require.NoError(t, err)
	require.Len(t, messages.created, 2)

	userMessage := messages.created[0]
	assert.Equal(t, constant.MessageFromUser, userMessage.From)
	assert.Equal(t, constant.MessageStatusReady, userMessage.Status)
	assert.Equal(t, "how do I roll back a deploy?", userMessage.Content)

	placeholder := messages.created[1]
	assert.Equal(t, constant.MessageFromAssistant, placeholder.From)
	assert.Equal(t, constant.MessageStatusGenerating, placeholder.Status)
	assert.Equal(t, constant.MessageThinkingPlaceholder, placeholder.Content)

	assert.Equal(t, userMessage.Id, res.UserMessageId)
	assert.Equal(t, placeholder.Id, res.AssistantMessageId)
	assert.Equal(t, constant.MessageStatusGenerating, res.Status)

	require.Len(t, bus.calls, 1)
	assert.Equal(t, constant.TopicMessageResponse, bus.calls[0].topic)
	assert.Equal(t, jobs.PriorityHigh, bus.calls[0].priority)
	payload, ok := bus.calls[0].payload.(dto.MessageResponseJobMessage)
	require.True(t, ok)
	assert.Equal(t, chat.Id, payload.ChatId)
	assert.Equal(t, placeholder.Id, payload.MessageId)
}

func TestPostExternalMessageCreatesChatKeyedToExternalId(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), OwnerId: uuid.New()}

	chats := &fakeChatRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
			return nil, nil
		},
	}
	messages := &fakeMessageRepo{}
	bus := &fakeBus{}

	svc := NewChatService(&fakeUowFactory{uow: &fakeUow{chats: chats, messages: messages}}, bus)

	_, err := svc.PostExternalMessage(context.Background(), &ExternalMessage{
		Assistant:    assistant,
		Source:       entity.ChatSourceSlack,
		ExternalId:   "1727000001.000100",
		SlackChannel: "C012AB3CD",
		Content:      "where is the runbook?",
		RawPayload:   []byte(`{"raw":true}`),
	})

	require.NoError(t, err)
	require.Len(t, chats.created, 1)
	created := chats.created[0]
	assert.Equal(t, assistant.Id, created.AssistantId)
	assert.Equal(t, assistant.OwnerId, created.UserId)
	assert.Equal(t, entity.ChatSourceSlack, created.Source)
	require.NotNil(t, created.WebhookExternalId)
	assert.Equal(t, "1727000001.000100", *created.WebhookExternalId)
	assert.Equal(t, "C012AB3CD", created.SlackChannel)
	assert.Equal(t, "where is the runbook?", created.Title)

	require.Len(t, messages.created, 2)
	assert.Equal(t, []byte(`{"raw":true}`), messages.created[0].RawPayload)
	assert.Nil(t, messages.created[0].UserId)
}

func TestPostExternalMessageReusesExistingChat(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), OwnerId: uuid.New()}
	externalId := "PINC123"
	existing := &entity.Chat{
		Id:                uuid.New(),
		AssistantId:       assistant.Id,
		Source:            entity.ChatSourcePagerDuty,
		WebhookExternalId: &externalId,
	}

	chats := &fakeChatRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
			return existing, nil
		},
	}
	messages := &fakeMessageRepo{}
	bus := &fakeBus{}

	svc := NewChatService(&fakeUowFactory{uow: &fakeUow{chats: chats, messages: messages}}, bus)

	_, err := svc.PostExternalMessage(context.Background(), &ExternalMessage{
		Assistant:  assistant,
		Source:     entity.ChatSourcePagerDuty,
		ExternalId: externalId,
		Content:    "a new note landed",
	})

	require.NoError(t, err)
	assert.Empty(t, chats.created)
	require.Len(t, messages.created, 2)
	assert.Equal(t, existing.Id, messages.created[0].ChatId)
}
