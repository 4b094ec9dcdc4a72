package service

import (
	"context"
	"errors"
	"testing"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlackPoster struct {
	err   error
	calls []struct{ channel, threadTs, text string }
}

func (p *fakeSlackPoster) PostMessage(ctx context.Context, channel, threadTs, text string) (string, error) {
	p.calls = append(p.calls, struct{ channel, threadTs, text string }{channel, threadTs, text})
	return "1727000000.000100", p.err
}

type fakePagerDutyNoter struct {
	err   error
	calls []struct{ incidentID, content string }
}

func (p *fakePagerDutyNoter) PostNote(ctx context.Context, incidentID, content string) error {
	p.calls = append(p.calls, struct{ incidentID, content string }{incidentID, content})
	return p.err
}

type messageJobFixture struct {
	svc       *messageJobService
	messages  *fakeMessageRepo
	slack     *fakeSlackPoster
	pagerduty *fakePagerDutyNoter
}

func newMessageJobFixture(chat *entity.Chat, assistant *entity.Assistant, placeholder *entity.Message, history []*entity.Message, generator *fakeGenerator) *messageJobFixture {
	messages := &fakeMessageRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
			return placeholder, nil
		},
		findAllFn: func(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
			return history, nil
		},
	}
	chats := &fakeChatRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
			return chat, nil
		},
	}
	assistants := &fakeAssistantRepo{
		findOneFn: func(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error) {
			return assistant, nil
		},
	}
	documents := &fakeDocumentRepo{
		nearestFn: func(ctx context.Context, q contract.NearestQuery) ([]*entity.Document, error) {
			return nil, nil
		},
	}

	slack := &fakeSlackPoster{}
	pagerduty := &fakePagerDutyNoter{}
	noop := logger.NewNoopLogger()

	svc := &messageJobService{
		uowFactory: &fakeUowFactory{uow: &fakeUow{
			messages:   messages,
			chats:      chats,
			assistants: assistants,
			documents:  documents,
		}},
		embedder:  &fakeEmbedder{},
		generator: generator,
		external:  rag.NewExternalSources(nil, nil, noop),
		slack:     slack,
		pagerduty: pagerduty,
		log:       noop,
		cfg:       answerTestConfig(),
	}

	return &messageJobFixture{svc: svc, messages: messages, slack: slack, pagerduty: pagerduty}
}

func slackChat(assistantId uuid.UUID) *entity.Chat {
	threadTs := "1726999999.000200"
	return &entity.Chat{
		Id:                uuid.New(),
		AssistantId:       assistantId,
		UserId:            uuid.New(),
		Source:            entity.ChatSourceSlack,
		WebhookExternalId: &threadTs,
		SlackChannel:      "C012AB3CD",
	}
}

func TestRespondOverwritesPlaceholderAndDeliversToSlack(t *testing.T) {
	assistant := &entity.Assistant{
		Id:           uuid.New(),
		Instructions: "You are the on-call helper.",
	}
	chat := slackChat(assistant.Id)
	placeholder := &entity.Message{
		Id:      uuid.New(),
		ChatId:  chat.Id,
		Content: constant.MessageThinkingPlaceholder,
		From:    constant.MessageFromAssistant,
		Status:  constant.MessageStatusGenerating,
	}
	history := []*entity.Message{
		{Id: uuid.New(), ChatId: chat.Id, From: constant.MessageFromUser, Content: "where is the runbook?", Status: constant.MessageStatusReady},
	}

	f := newMessageJobFixture(chat, assistant, placeholder, history, &fakeGenerator{answer: "It lives in the wiki."})

	retry := f.svc.respond(context.Background(), chat.Id, placeholder.Id)

	assert.False(t, retry)
	require.NotEmpty(t, f.messages.updated)
	final := f.messages.updated[len(f.messages.updated)-1]
	assert.Equal(t, constant.MessageStatusReady, final.Status)
	assert.Equal(t, "It lives in the wiki.", final.Content)
	require.NotNil(t, final.Prompt)
	assert.NotEmpty(t, *final.Prompt)

	require.Len(t, f.slack.calls, 1)
	assert.Equal(t, "C012AB3CD", f.slack.calls[0].channel)
	assert.Equal(t, "1726999999.000200", f.slack.calls[0].threadTs)
	assert.Equal(t, "It lives in the wiki.", f.slack.calls[0].text)
}

func TestRespondMarksFailedButKeepsPlaceholderContent(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), Instructions: "helper"}
	chat := slackChat(assistant.Id)
	placeholder := &entity.Message{
		Id:      uuid.New(),
		ChatId:  chat.Id,
		Content: constant.MessageThinkingPlaceholder,
		From:    constant.MessageFromAssistant,
		Status:  constant.MessageStatusGenerating,
	}
	history := []*entity.Message{
		{Id: uuid.New(), ChatId: chat.Id, From: constant.MessageFromUser, Content: "hello", Status: constant.MessageStatusReady},
	}

	f := newMessageJobFixture(chat, assistant, placeholder, history, &fakeGenerator{err: errors.New("model unavailable")})

	retry := f.svc.respond(context.Background(), chat.Id, placeholder.Id)

	assert.False(t, retry)
	require.NotEmpty(t, f.messages.updated)
	final := f.messages.updated[len(f.messages.updated)-1]
	assert.Equal(t, constant.MessageStatusFailed, final.Status)
	assert.Equal(t, constant.MessageThinkingPlaceholder, final.Content)
	assert.Empty(t, f.slack.calls)
}

func TestRespondFailsTerminalWhenChatHasNoUserMessage(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New(), Instructions: "helper"}
	chat := slackChat(assistant.Id)
	placeholder := &entity.Message{
		Id:     uuid.New(),
		ChatId: chat.Id,
		From:   constant.MessageFromAssistant,
		Status: constant.MessageStatusGenerating,
	}

	f := newMessageJobFixture(chat, assistant, placeholder, nil, &fakeGenerator{answer: "unused"})

	retry := f.svc.respond(context.Background(), chat.Id, placeholder.Id)

	assert.False(t, retry)
	require.NotEmpty(t, f.messages.updated)
	assert.Equal(t, constant.MessageStatusFailed, f.messages.updated[len(f.messages.updated)-1].Status)
}

func TestRespondSkipsAlreadyCompletedMessage(t *testing.T) {
	assistant := &entity.Assistant{Id: uuid.New()}
	chat := slackChat(assistant.Id)
	placeholder := &entity.Message{
		Id:      uuid.New(),
		ChatId:  chat.Id,
		Content: "done already",
		Status:  constant.MessageStatusReady,
	}

	f := newMessageJobFixture(chat, assistant, placeholder, nil, &fakeGenerator{answer: "unused"})

	retry := f.svc.respond(context.Background(), chat.Id, placeholder.Id)

	assert.False(t, retry)
	assert.Empty(t, f.messages.updated)
	assert.Empty(t, f.slack.calls)
}

func TestDeliverPostsPagerDutyNote(t *testing.T) {
	incidentID := "PINC123"
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: true}
	chat := &entity.Chat{
		Id:                uuid.New(),
		AssistantId:       assistant.Id,
		Source:            entity.ChatSourcePagerDuty,
		WebhookExternalId: &incidentID,
	}

	f := newMessageJobFixture(chat, assistant, nil, nil, &fakeGenerator{})

	f.svc.deliver(context.Background(), chat, assistant, "Check the failover runbook first.")

	require.Len(t, f.pagerduty.calls, 1)
	assert.Equal(t, "PINC123", f.pagerduty.calls[0].incidentID)
	assert.Equal(t, "Check the failover runbook first.", f.pagerduty.calls[0].content)
	assert.Empty(t, f.slack.calls)
}

func TestDeliverSkipsPagerDutyWhenDisabled(t *testing.T) {
	incidentID := "PINC123"
	assistant := &entity.Assistant{Id: uuid.New(), PagerDutyEnabled: false}
	chat := &entity.Chat{
		Id:                uuid.New(),
		AssistantId:       assistant.Id,
		Source:            entity.ChatSourcePagerDuty,
		WebhookExternalId: &incidentID,
	}

	f := newMessageJobFixture(chat, assistant, nil, nil, &fakeGenerator{})

	f.svc.deliver(context.Background(), chat, assistant, "answer")

	assert.Empty(t, f.pagerduty.calls)
}
