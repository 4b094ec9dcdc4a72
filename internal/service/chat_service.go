package service

import (
	"context"
	"time"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/apperr"
	"knowledge-assistant-be/pkg/jobs"

	"github.com/google/uuid"
)

// ExternalMessage is an inbound message from a channel webhook. The
// external id correlates repeated deliveries for the same incident or
// thread to a single chat.
type ExternalMessage struct {
	Assistant    *entity.Assistant
	Source       string
	ExternalId   string
	SlackChannel string
	Content      string
	RawPayload   []byte
	StartedByBot bool
}

type IChatService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowChatResponse, error)
	Messages(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) (*dto.ListMessagesResponse, error)
	PostMessage(ctx context.Context, userId uuid.UUID, req *dto.PostMessageRequest) (*dto.PostMessageResponse, error)
	PostExternalMessage(ctx context.Context, msg *ExternalMessage) (*dto.PostMessageResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	bus        jobs.IBus
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, bus jobs.IBus) IChatService {
	return &chatService{uowFactory: uowFactory, bus: bus}
}

func (s *chatService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error) {
	const op = "chat.Create"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.ByID{ID: req.AssistantId},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, apperr.NotFound(op, "assistant not found")
	}

	chat := entity.Chat{
		Id:          uuid.New(),
		AssistantId: assistant.Id,
		UserId:      userId,
		Title:       req.Title,
		Source:      entity.ChatSourceApi,
		CreatedAt:   time.Now(),
	}

	if err := uow.ChatRepository().Create(ctx, &chat); err != nil {
		return nil, err
	}

	return &dto.CreateChatResponse{Id: chat.Id}, nil
}

func (s *chatService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowChatResponse, 0, len(chats))
	for _, c := range chats {
		responses = append(responses, &dto.ShowChatResponse{
			Id:          c.Id,
			AssistantId: c.AssistantId,
			Title:       c.Title,
			Source:      c.Source,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		})
	}
	return responses, nil
}

func (s *chatService) Messages(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) (*dto.ListMessagesResponse, error) {
	const op = "chat.Messages"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound(op, "chat not found")
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.MessageItem{
			Id:        m.Id,
			From:      m.From,
			Content:   m.Content,
			Status:    m.Status,
			CreatedAt: m.CreatedAt,
		})
	}

	return &dto.ListMessagesResponse{ChatId: chatId, Messages: items}, nil
}

func (s *chatService) PostMessage(ctx context.Context, userId uuid.UUID, req *dto.PostMessageRequest) (*dto.PostMessageResponse, error) {
	const op = "chat.PostMessage"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: req.ChatId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound(op, "chat not found")
	}

	return s.appendAndEnqueue(ctx, uow, chat, &userId, req.Content, nil)
}

// PostExternalMessage finds or creates the chat correlated to a
// webhook delivery, then appends the message and schedules a response.
func (s *chatService) PostExternalMessage(ctx context.Context, msg *ExternalMessage) (*dto.PostMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByWebhookExternalId{ExternalId: msg.ExternalId},
	)
	if err != nil {
		return nil, err
	}

	if chat == nil {
		externalId := msg.ExternalId
		chat = &entity.Chat{
			Id:                uuid.New(),
			AssistantId:       msg.Assistant.Id,
			UserId:            msg.Assistant.OwnerId,
			Title:             msg.Content,
			Source:            msg.Source,
			WebhookExternalId: &externalId,
			SlackChannel:      msg.SlackChannel,
			StartedByBot:      msg.StartedByBot,
			CreatedAt:         time.Now(),
		}
		if err := uow.ChatRepository().Create(ctx, chat); err != nil {
			return nil, err
		}
	}

	return s.appendAndEnqueue(ctx, uow, chat, nil, msg.Content, msg.RawPayload)
}

func (s *chatService) Delete(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) error {
	const op = "chat.Delete"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if chat == nil {
		return apperr.NotFound(op, "chat not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByChatId(ctx, chatId); err != nil {
		return err
	}
	if err := uow.ChatRepository().Delete(ctx, chatId); err != nil {
		return err
	}

	return uow.Commit()
}

// appendAndEnqueue stores the inbound message, creates the visible
// placeholder the job will overwrite, and schedules the response job.
func (s *chatService) appendAndEnqueue(ctx context.Context, uow unitofwork.UnitOfWork, chat *entity.Chat, userId *uuid.UUID, content string, rawPayload []byte) (*dto.PostMessageResponse, error) {
	userMessage := entity.Message{
		Id:         uuid.New(),
		ChatId:     chat.Id,
		UserId:     userId,
		Content:    content,
		From:       constant.MessageFromUser,
		Status:     constant.MessageStatusReady,
		RawPayload: rawPayload,
		CreatedAt:  time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	placeholder := entity.Message{
		Id:        uuid.New(),
		ChatId:    chat.Id,
		Content:   constant.MessageThinkingPlaceholder,
		From:      constant.MessageFromAssistant,
		Status:    constant.MessageStatusGenerating,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &placeholder); err != nil {
		return nil, err
	}

	err := s.bus.Enqueue(ctx, constant.TopicMessageResponse,
		dto.MessageResponseJobMessage{ChatId: chat.Id, MessageId: placeholder.Id}, jobs.PriorityHigh)
	if err != nil {
		return nil, err
	}

	return &dto.PostMessageResponse{
		UserMessageId:      userMessage.Id,
		AssistantMessageId: placeholder.Id,
		Status:             placeholder.Status,
	}, nil
}
