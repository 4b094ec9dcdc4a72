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

type IQuestionService interface {
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowQuestionResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowQuestionResponse, error)
}

type questionService struct {
	uowFactory unitofwork.RepositoryFactory
	bus        jobs.IBus
}

func NewQuestionService(uowFactory unitofwork.RepositoryFactory, bus jobs.IBus) IQuestionService {
	return &questionService{uowFactory: uowFactory, bus: bus}
}

func (s *questionService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	const op = "question.Ask"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// A single library id narrows the scope; LibraryIds pins the exact
	// set. Both empty means all libraries the user owns, resolved by
	// the answer job at generation time.
	libraryIds := req.LibraryIds
	if req.LibraryId != nil {
		if len(libraryIds) > 0 {
			return nil, apperr.Validation(op, "library_id and library_ids are mutually exclusive")
		}
		libraryIds = []uuid.UUID{*req.LibraryId}
	}

	question := entity.Question{
		Id:                 uuid.New(),
		UserId:             userId,
		LibraryId:          req.LibraryId,
		LibraryIdsIncluded: libraryIds,
		Text:               req.Text,
		Status:             constant.QuestionStatusPending,
		CreatedAt:          time.Now(),
	}

	if err := uow.QuestionRepository().Create(ctx, &question); err != nil {
		return nil, err
	}

	err := s.bus.Enqueue(ctx, constant.TopicAnswerQuestion,
		dto.AnswerQuestionJobMessage{QuestionId: question.Id}, jobs.PriorityHigh)
	if err != nil {
		return nil, err
	}

	return &dto.AskQuestionResponse{Id: question.Id, Status: question.Status}, nil
}

func (s *questionService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowQuestionResponse, error) {
	const op = "question.Show"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	question, err := uow.QuestionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound(op, "question not found")
	}

	return toQuestionResponse(question), nil
}

func (s *questionService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowQuestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	questions, err := uow.QuestionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowQuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, toQuestionResponse(q))
	}
	return responses, nil
}

func toQuestionResponse(q *entity.Question) *dto.ShowQuestionResponse {
	return &dto.ShowQuestionResponse{
		Id:                    q.Id,
		Text:                  q.Text,
		LibraryId:             q.LibraryId,
		LibraryIdsIncluded:    q.LibraryIdsIncluded,
		Answer:                q.Answer,
		Status:                q.Status,
		GenerationTimeSeconds: q.GenerationTimeSeconds,
		GeneratedAt:           q.GeneratedAt,
		CreatedAt:             q.CreatedAt,
	}
}
