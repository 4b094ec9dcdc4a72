package service

import (
	"context"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/channels/slack"
)

type ISlackWebhookService interface {
	HandleEvent(ctx context.Context, env *slack.Envelope, rawBody []byte) error
}

type slackWebhookService struct {
	uowFactory  unitofwork.RepositoryFactory
	chatService IChatService
	botUserID   string
	log         logger.ILogger
}

func NewSlackWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	chatService IChatService,
	botUserID string,
	log logger.ILogger,
) ISlackWebhookService {
	return &slackWebhookService{
		uowFactory:  uowFactory,
		chatService: chatService,
		botUserID:   botUserID,
		log:         log,
	}
}

// HandleEvent turns a Slack message event into a chat message. Events
// that fail a guard are dropped silently; Slack retries on non-2xx and
// none of the guards describe retriable conditions.
func (s *slackWebhookService) HandleEvent(ctx context.Context, env *slack.Envelope, rawBody []byte) error {
	event := env.Event
	if event.Type != slack.EventMessage && event.Type != slack.EventAppMention {
		return nil
	}
	text := event.Text
	if event.Type == slack.EventAppMention {
		text = slack.StripMentions(text)
	}
	if text == "" {
		return nil
	}

	// Loop guard: never answer the assistant's own posts, or any other
	// bot's.
	if event.IsFromBot() || (s.botUserID != "" && event.User == s.botUserID) {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.BySlackChannel{Channel: event.Channel},
	)
	if err != nil {
		return err
	}
	if assistant == nil {
		// No assistant listens on this channel.
		return nil
	}

	threadKey := event.ThreadKey()

	if assistant.IgnoreThreadsNotFromBot {
		ignore, err := s.threadNotStartedByBot(ctx, uow, event, threadKey)
		if err != nil {
			return err
		}
		if ignore {
			return nil
		}
	}

	_, err = s.chatService.PostExternalMessage(ctx, &ExternalMessage{
		Assistant:    assistant,
		Source:       entity.ChatSourceSlack,
		ExternalId:   threadKey,
		SlackChannel: event.Channel,
		Content:      text,
		RawPayload:   rawBody,
	})
	if err != nil {
		return err
	}

	s.log.Info("slack_webhook", "message accepted", map[string]interface{}{
		"channel": event.Channel,
		"thread":  threadKey,
	})
	return nil
}

// threadNotStartedByBot reports whether a thread reply belongs to a
// conversation the assistant did not open.
func (s *slackWebhookService) threadNotStartedByBot(ctx context.Context, uow unitofwork.UnitOfWork, event slack.Event, threadKey string) (bool, error) {
	// Top-level messages start their own thread, nothing to check.
	if event.ThreadTs == "" || event.ThreadTs == event.Ts {
		return false, nil
	}

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByWebhookExternalId{ExternalId: threadKey},
	)
	if err != nil {
		return false, err
	}
	if chat == nil {
		return true, nil
	}
	return !chat.StartedByBot, nil
}
