package service

import (
	"context"
	"encoding/json"
	"time"

	"knowledge-assistant-be/internal/config"
	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/embedding"
	"knowledge-assistant-be/pkg/events"
	"knowledge-assistant-be/pkg/jobs"
	"knowledge-assistant-be/pkg/llm"
	pktNats "knowledge-assistant-be/pkg/nats"
	"knowledge-assistant-be/pkg/prompt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const answerJobType = "answer"

type IAnswerJobService interface {
	Consume(ctx context.Context) error
}

type answerJobService struct {
	bus            jobs.IBus
	lock           *jobs.Lock
	uowFactory     unitofwork.RepositoryFactory
	embedder       embedding.Provider
	generator      llm.Provider
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
	cfg            *config.Config
}

func NewAnswerJobService(
	bus jobs.IBus,
	lock *jobs.Lock,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.Provider,
	generator llm.Provider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	cfg *config.Config,
) IAnswerJobService {
	return &answerJobService{
		bus:            bus,
		lock:           lock,
		uowFactory:     uowFactory,
		embedder:       embedder,
		generator:      generator,
		eventPublisher: eventPublisher,
		log:            log,
		cfg:            cfg,
	}
}

func (s *answerJobService) Consume(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, constant.TopicAnswerQuestion)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *answerJobService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AnswerQuestionJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("answer_job", "failed to unmarshal job payload", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed payloads never become valid
		return
	}

	ttl := time.Duration(s.cfg.Pipeline.JobTimeoutSeconds) * time.Second
	acquired, err := s.lock.Acquire(ctx, answerJobType, payload.QuestionId.String(), ttl)
	if err != nil {
		s.log.Error("answer_job", "failed to acquire lock", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if !acquired {
		// Another worker already owns this question.
		msg.Ack()
		return
	}
	defer s.lock.Release(ctx, answerJobType, payload.QuestionId.String())

	jobCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()

	if retry := s.answer(jobCtx, payload.QuestionId); retry {
		msg.Nack()
		return
	}
	msg.Ack()
}

// answer runs one generation attempt. It returns true when the job
// should be redelivered; terminal outcomes, success or failed status,
// return false.
func (s *answerJobService) answer(ctx context.Context, questionId uuid.UUID) bool {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	question, err := uow.QuestionRepository().FindOne(ctx, specification.ByID{ID: questionId})
	if err != nil {
		s.log.Error("answer_job", "failed to load question", map[string]interface{}{"error": err.Error()})
		return true
	}
	if question == nil {
		s.log.Warn("answer_job", "question no longer exists", map[string]interface{}{"question_id": questionId})
		return false
	}
	if question.Status != constant.QuestionStatusPending {
		// Duplicate delivery after a terminal state, or a concurrent
		// worker won the race before the lock existed.
		return false
	}

	if err := uow.QuestionRepository().UpdateStatus(ctx, question.Id, constant.QuestionStatusGenerating); err != nil {
		s.log.Error("answer_job", "failed to mark generating", map[string]interface{}{"error": err.Error()})
		return true
	}

	started := time.Now()
	answer, builtPrompt, err := s.generate(ctx, uow, question)
	if err != nil {
		s.log.Error("answer_job", "generation failed", map[string]interface{}{
			"question_id": question.Id,
			"error":       err.Error(),
		})
		if err := uow.QuestionRepository().UpdateStatus(ctx, question.Id, constant.QuestionStatusFailed); err != nil {
			s.log.Error("answer_job", "failed to mark failed", map[string]interface{}{"error": err.Error()})
			return true
		}
		s.publishOutcome(ctx, question.Id, constant.QuestionStatusFailed)
		return false
	}

	now := time.Now()
	question.Answer = &answer
	question.Prompt = builtPrompt
	question.Status = constant.QuestionStatusGenerated
	question.GenerationTimeSeconds = now.Sub(started).Seconds()
	question.GeneratedAt = &now

	if err := uow.QuestionRepository().Update(ctx, question); err != nil {
		s.log.Error("answer_job", "failed to store answer", map[string]interface{}{"error": err.Error()})
		return true
	}

	s.publishOutcome(ctx, question.Id, constant.QuestionStatusGenerated)
	return false
}

func (s *answerJobService) generate(ctx context.Context, uow unitofwork.UnitOfWork, question *entity.Question) (string, string, error) {
	// The question embedding is computed once and persisted, so
	// redeliveries and re-asks reuse it instead of calling the
	// provider again.
	if question.Embedding == nil {
		vector, err := s.embedder.Embed(ctx, question.Text)
		if err != nil {
			return "", "", err
		}
		question.Embedding = vector
		if err := uow.QuestionRepository().Update(ctx, question); err != nil {
			return "", "", err
		}
	}

	libraryIds, err := s.resolveLibraries(ctx, uow, question)
	if err != nil {
		return "", "", err
	}

	docs, err := uow.DocumentRepository().Nearest(ctx, contract.NearestQuery{
		Embedding:   question.Embedding,
		Metric:      contract.MetricEuclidean,
		LibraryIDs:  libraryIds,
		EnabledOnly: true,
		Limit:       s.cfg.Pipeline.MaxPromptDocs,
	})
	if err != nil {
		return "", "", err
	}

	builder := prompt.NewBuilder()
	builder.Trusted("Answer the user's question using only the provided context documents. When the context does not contain the answer, say so. Cite document URLs when available.")
	builder.Documents(toContextDocuments(docs), prompt.Budget{
		MaxDocTokens: s.cfg.Pipeline.MaxPromptDocTokens,
		MaxDocs:      s.cfg.Pipeline.MaxPromptDocs,
		RootURL:      s.cfg.App.BaseURL,
	})
	builder.Untrusted("QUESTION:\n" + question.Text)

	builtPrompt, err := builder.Finalize()
	if err != nil {
		return "", "", err
	}

	answer, err := s.generator.Generate(ctx, builtPrompt,
		llm.WithModel(s.cfg.Ai.GenerationModel),
		llm.WithTemperature(s.cfg.Ai.Temperature),
		llm.WithMaxTokens(s.cfg.Ai.MaxTokens),
	)
	if err != nil {
		return "", "", err
	}

	return answer, builtPrompt, nil
}

// resolveLibraries pins the question to a concrete library set so the
// answer records exactly which corpus it was generated against.
func (s *answerJobService) resolveLibraries(ctx context.Context, uow unitofwork.UnitOfWork, question *entity.Question) ([]uuid.UUID, error) {
	if len(question.LibraryIdsIncluded) > 0 {
		return question.LibraryIdsIncluded, nil
	}

	libraries, err := uow.LibraryRepository().FindAll(ctx,
		specification.ByOwner{OwnerID: question.UserId},
	)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(libraries))
	for _, l := range libraries {
		ids = append(ids, l.Id)
	}

	question.LibraryIdsIncluded = ids
	if err := uow.QuestionRepository().Update(ctx, question); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *answerJobService) publishOutcome(ctx context.Context, questionId uuid.UUID, status string) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewQuestionAnswered(constant.EventQuestionAnswered, questionId, status)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		// Events are auxiliary; the answer is already durable.
		s.log.Warn("answer_job", "failed to publish event", map[string]interface{}{"error": err.Error()})
	}
}

func toContextDocuments(docs []*entity.Document) []prompt.ContextDocument {
	out := make([]prompt.ContextDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, prompt.ContextDocument{
			ID:         d.Id.String(),
			Title:      d.Title,
			Text:       d.Text,
			Url:        d.Url,
			TokenCount: d.TokenCount,
		})
	}
	return out
}
