package service

import (
	"context"
	"time"

	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/apperr"

	"github.com/google/uuid"
)

type IAssistantService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateAssistantRequest) (*dto.CreateAssistantResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateAssistantRequest) (*dto.ShowAssistantResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowAssistantResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowAssistantResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	CreateLibrary(ctx context.Context, userId uuid.UUID, req *dto.CreateLibraryRequest) (*dto.CreateLibraryResponse, error)
	ListLibraries(ctx context.Context, userId uuid.UUID) ([]*dto.ShowLibraryResponse, error)
}

type assistantService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAssistantService(uowFactory unitofwork.RepositoryFactory) IAssistantService {
	return &assistantService{uowFactory: uowFactory}
}

// validateLibraries rejects library ids the user does not own so an
// assistant can never read across tenants.
func (s *assistantService) validateLibraries(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, libraryIds []uuid.UUID) error {
	const op = "assistant.validateLibraries"

	if len(libraryIds) == 0 {
		return nil
	}

	owned, err := uow.LibraryRepository().FindAll(ctx,
		specification.ByIDs{IDs: libraryIds},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return err
	}
	if len(owned) != len(libraryIds) {
		return apperr.Validation(op, "one or more libraries do not exist or are not yours")
	}
	return nil
}

func (s *assistantService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateAssistantRequest) (*dto.CreateAssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.validateLibraries(ctx, uow, userId, req.LibraryIds); err != nil {
		return nil, err
	}

	assistant := entity.Assistant{
		Id:                      uuid.New(),
		OwnerId:                 userId,
		Name:                    req.Name,
		Instructions:            req.Instructions,
		OutputFormat:            req.OutputFormat,
		ContextText:             req.ContextText,
		LibraryIds:              req.LibraryIds,
		SlackChannel:            req.SlackChannel,
		IgnoreThreadsNotFromBot: req.IgnoreThreadsNotFromBot,
		QuipDocumentId:          req.QuipDocumentId,
		ConfluenceQuery:         req.ConfluenceQuery,
		PagerDutyEnabled:        req.PagerDutyEnabled,
		CreatedAt:               time.Now(),
	}

	if err := uow.AssistantRepository().Create(ctx, &assistant); err != nil {
		return nil, err
	}

	return &dto.CreateAssistantResponse{Id: assistant.Id}, nil
}

func (s *assistantService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateAssistantRequest) (*dto.ShowAssistantResponse, error) {
	const op = "assistant.Update"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, apperr.NotFound(op, "assistant not found")
	}

	if err := s.validateLibraries(ctx, uow, userId, req.LibraryIds); err != nil {
		return nil, err
	}

	assistant.Name = req.Name
	assistant.Instructions = req.Instructions
	assistant.OutputFormat = req.OutputFormat
	assistant.ContextText = req.ContextText
	assistant.LibraryIds = req.LibraryIds
	assistant.SlackChannel = req.SlackChannel
	assistant.IgnoreThreadsNotFromBot = req.IgnoreThreadsNotFromBot
	assistant.QuipDocumentId = req.QuipDocumentId
	assistant.ConfluenceQuery = req.ConfluenceQuery
	assistant.PagerDutyEnabled = req.PagerDutyEnabled
	now := time.Now()
	assistant.UpdatedAt = &now

	if err := uow.AssistantRepository().Update(ctx, assistant); err != nil {
		return nil, err
	}

	return toAssistantResponse(assistant), nil
}

func (s *assistantService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowAssistantResponse, error) {
	const op = "assistant.Show"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, apperr.NotFound(op, "assistant not found")
	}

	return toAssistantResponse(assistant), nil
}

func (s *assistantService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowAssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistants, err := uow.AssistantRepository().FindAll(ctx,
		specification.ByOwner{OwnerID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowAssistantResponse, 0, len(assistants))
	for _, a := range assistants {
		responses = append(responses, toAssistantResponse(a))
	}
	return responses, nil
}

func (s *assistantService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	const op = "assistant.Delete"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return err
	}
	if assistant == nil {
		return apperr.NotFound(op, "assistant not found")
	}

	return uow.AssistantRepository().Delete(ctx, id)
}

func (s *assistantService) CreateLibrary(ctx context.Context, userId uuid.UUID, req *dto.CreateLibraryRequest) (*dto.CreateLibraryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	library := entity.Library{
		Id:        uuid.New(),
		OwnerId:   userId,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := uow.LibraryRepository().Create(ctx, &library); err != nil {
		return nil, err
	}

	return &dto.CreateLibraryResponse{Id: library.Id}, nil
}

func (s *assistantService) ListLibraries(ctx context.Context, userId uuid.UUID) ([]*dto.ShowLibraryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	libraries, err := uow.LibraryRepository().FindAll(ctx,
		specification.ByOwner{OwnerID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowLibraryResponse, 0, len(libraries))
	for _, l := range libraries {
		responses = append(responses, &dto.ShowLibraryResponse{
			Id:        l.Id,
			Name:      l.Name,
			CreatedAt: l.CreatedAt,
		})
	}
	return responses, nil
}

func toAssistantResponse(a *entity.Assistant) *dto.ShowAssistantResponse {
	return &dto.ShowAssistantResponse{
		Id:                      a.Id,
		Name:                    a.Name,
		Instructions:            a.Instructions,
		OutputFormat:            a.OutputFormat,
		ContextText:             a.ContextText,
		LibraryIds:              a.LibraryIds,
		SlackChannel:            a.SlackChannel,
		IgnoreThreadsNotFromBot: a.IgnoreThreadsNotFromBot,
		QuipDocumentId:          a.QuipDocumentId,
		ConfluenceQuery:         a.ConfluenceQuery,
		PagerDutyEnabled:        a.PagerDutyEnabled,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}
