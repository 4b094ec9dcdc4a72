package rag

import (
	"context"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/pkg/apperr"
	"knowledge-assistant-be/pkg/embedding"

	"github.com/google/uuid"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Query is a single retrieval request against the document corpus.
type Query struct {
	Text        string
	LibraryIDs  []uuid.UUID
	Metric      contract.DistanceMetric
	EnabledOnly bool
	SearchText  string
	Offset      int
	Limit       int
}

type IRetriever interface {
	// Retrieve embeds the query text and returns documents ranked by
	// ascending vector distance.
	Retrieve(ctx context.Context, q Query) ([]*entity.Document, error)

	// Related returns documents similar to an existing document,
	// excluding the document itself from the result.
	Related(ctx context.Context, doc *entity.Document, limit int) ([]*entity.Document, error)
}

type Retriever struct {
	embedder  embedding.Provider
	documents contract.DocumentRepository
}

func NewRetriever(embedder embedding.Provider, documents contract.DocumentRepository) *Retriever {
	return &Retriever{embedder: embedder, documents: documents}
}

func (r *Retriever) Retrieve(ctx context.Context, q Query) ([]*entity.Document, error) {
	const op = "rag.Retrieve"

	if q.Text == "" {
		return nil, apperr.Validation(op, "query text is required")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	metric := q.Metric
	if metric == "" {
		metric = contract.MetricEuclidean
	}

	vector, err := r.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}

	return r.documents.Nearest(ctx, contract.NearestQuery{
		Embedding:   vector,
		Metric:      metric,
		LibraryIDs:  q.LibraryIDs,
		EnabledOnly: q.EnabledOnly,
		SearchText:  q.SearchText,
		Offset:      q.Offset,
		Limit:       q.Limit,
	})
}

func (r *Retriever) Related(ctx context.Context, doc *entity.Document, limit int) ([]*entity.Document, error) {
	const op = "rag.Related"

	if doc == nil {
		return nil, apperr.Validation(op, "document is required")
	}
	if doc.Embedding == nil {
		return nil, apperr.Validation(op, "document has no embedding yet")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	// Fetch one extra row because the source document is its own
	// nearest neighbor, then drop it by id rather than by position.
	neighbors, err := r.documents.Nearest(ctx, contract.NearestQuery{
		Embedding:   doc.Embedding,
		Metric:      contract.MetricEuclidean,
		LibraryIDs:  []uuid.UUID{doc.LibraryId},
		EnabledOnly: true,
		Limit:       limit + 1,
	})
	if err != nil {
		return nil, err
	}

	related := make([]*entity.Document, 0, limit)
	for _, n := range neighbors {
		if n.Id == doc.Id {
			continue
		}
		related = append(related, n)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}
