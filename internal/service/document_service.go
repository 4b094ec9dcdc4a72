package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/apperr"
	"knowledge-assistant-be/pkg/jobs"
	"knowledge-assistant-be/pkg/rag"
	"knowledge-assistant-be/pkg/tokenizer"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	SetEnabled(ctx context.Context, userId uuid.UUID, req *dto.SetDocumentEnabledRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchDocumentsRequest) ([]*dto.DocumentSearchResult, error)
	Related(ctx context.Context, userId uuid.UUID, id uuid.UUID, limit int) ([]*dto.DocumentSearchResult, error)
}

type documentService struct {
	uowFactory   unitofwork.RepositoryFactory
	bus          jobs.IBus
	counter      tokenizer.Counter
	retriever    rag.IRetriever
	maxDocTokens int
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	bus jobs.IBus,
	counter tokenizer.Counter,
	retriever rag.IRetriever,
	maxDocTokens int,
) IDocumentService {
	return &documentService{
		uowFactory:   uowFactory,
		bus:          bus,
		counter:      counter,
		retriever:    retriever,
		maxDocTokens: maxDocTokens,
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *documentService) measure(text string) (lengthChars int, tokenCount int, err error) {
	const op = "document.measure"

	lengthChars = len([]rune(text))
	tokenCount, err = s.counter.Count(text)
	if err != nil {
		return 0, 0, apperr.Provider(op, "failed to count tokens", err)
	}
	if tokenCount > s.maxDocTokens {
		return 0, 0, apperr.Validation(op,
			fmt.Sprintf("document is %d tokens, the ceiling is %d", tokenCount, s.maxDocTokens))
	}
	return lengthChars, tokenCount, nil
}

func (s *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	const op = "document.Create"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	library, err := uow.LibraryRepository().FindOne(ctx,
		specification.ByID{ID: req.LibraryId},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if library == nil {
		return nil, apperr.NotFound(op, "library not found")
	}

	lengthChars, tokenCount, err := s.measure(req.Text)
	if err != nil {
		return nil, err
	}

	hash := contentHash(req.Text)
	existing, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByContentHash{LibraryID: req.LibraryId, Hash: hash},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation(op, "identical document already exists in this library")
	}

	doc := entity.Document{
		Id:          uuid.New(),
		LibraryId:   req.LibraryId,
		OwnerId:     userId,
		Title:       req.Title,
		Text:        req.Text,
		Url:         req.Url,
		ExternalId:  req.ExternalId,
		LengthChars: lengthChars,
		TokenCount:  tokenCount,
		ContentHash: hash,
		Enabled:     true,
		CreatedAt:   time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	err = s.bus.Enqueue(ctx, constant.TopicEmbedDocument,
		dto.EmbedDocumentJobMessage{DocumentId: doc.Id}, jobs.PriorityDefault)
	if err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	const op = "document.Update"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound(op, "document not found")
	}

	lengthChars, tokenCount, err := s.measure(req.Text)
	if err != nil {
		return nil, err
	}

	hash := contentHash(req.Text)
	textChanged := hash != doc.ContentHash

	doc.Title = req.Title
	doc.Text = req.Text
	doc.Url = req.Url
	doc.ExternalId = req.ExternalId
	doc.LengthChars = lengthChars
	doc.TokenCount = tokenCount
	doc.ContentHash = hash
	if textChanged {
		// The old embedding no longer describes the text.
		doc.Embedding = nil
	}
	now := time.Now()
	doc.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	if textChanged {
		err = s.bus.Enqueue(ctx, constant.TopicEmbedDocument,
			dto.EmbedDocumentJobMessage{DocumentId: doc.Id}, jobs.PriorityDefault)
		if err != nil {
			return nil, err
		}
	}

	return &dto.UpdateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) SetEnabled(ctx context.Context, userId uuid.UUID, req *dto.SetDocumentEnabledRequest) error {
	const op = "document.SetEnabled"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return apperr.NotFound(op, "document not found")
	}

	return uow.DocumentRepository().SetEnabled(ctx, req.Id, req.Enabled)
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	const op = "document.Delete"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return apperr.NotFound(op, "document not found")
	}

	return uow.DocumentRepository().Delete(ctx, id)
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	const op = "document.Show"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound(op, "document not found")
	}

	return &dto.ShowDocumentResponse{
		Id:           doc.Id,
		LibraryId:    doc.LibraryId,
		Title:        doc.Title,
		Text:         doc.Text,
		Url:          doc.Url,
		ExternalId:   doc.ExternalId,
		LengthChars:  doc.LengthChars,
		TokenCount:   doc.TokenCount,
		Enabled:      doc.Enabled,
		HasEmbedding: doc.Embedding != nil,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *documentService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchDocumentsRequest) ([]*dto.DocumentSearchResult, error) {
	libraryIds, err := s.ownedLibraries(ctx, userId, req.LibraryIds)
	if err != nil {
		return nil, err
	}

	docs, err := s.retriever.Retrieve(ctx, rag.Query{
		Text:        req.Query,
		LibraryIDs:  libraryIds,
		Metric:      metricFromRequest(req.Metric),
		EnabledOnly: true,
		SearchText:  req.SearchText,
		Offset:      req.Offset,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, err
	}

	return toSearchResults(docs), nil
}

func (s *documentService) Related(ctx context.Context, userId uuid.UUID, id uuid.UUID, limit int) ([]*dto.DocumentSearchResult, error) {
	const op = "document.Related"

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound(op, "document not found")
	}

	related, err := s.retriever.Related(ctx, doc, limit)
	if err != nil {
		return nil, err
	}

	return toSearchResults(related), nil
}

// ownedLibraries narrows a requested library scope to libraries the
// user actually owns; with no scope requested, all owned libraries are
// searched.
func (s *documentService) ownedLibraries(ctx context.Context, userId uuid.UUID, requested []uuid.UUID) ([]uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.ByOwner{OwnerID: userId}}
	if len(requested) > 0 {
		specs = append(specs, specification.ByIDs{IDs: requested})
	}

	libraries, err := uow.LibraryRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(libraries))
	for _, l := range libraries {
		ids = append(ids, l.Id)
	}
	return ids, nil
}

func metricFromRequest(metric string) contract.DistanceMetric {
	if metric == string(contract.MetricCosine) {
		return contract.MetricCosine
	}
	return contract.MetricEuclidean
}

func toSearchResults(docs []*entity.Document) []*dto.DocumentSearchResult {
	results := make([]*dto.DocumentSearchResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, &dto.DocumentSearchResult{
			Id:         d.Id,
			LibraryId:  d.LibraryId,
			Title:      d.Title,
			Text:       d.Text,
			Url:        d.Url,
			TokenCount: d.TokenCount,
		})
	}
	return results
}
