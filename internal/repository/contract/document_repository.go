package contract

import (
	"context"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// DistanceMetric selects the pgvector operator used for ranking.
type DistanceMetric string

const (
	MetricEuclidean DistanceMetric = "l2"
	MetricCosine    DistanceMetric = "cosine"
)

// NearestQuery constrains a vector similarity search. A hard result
// cap is applied by the implementation before ranking truncation.
type NearestQuery struct {
	Embedding   []float32
	Metric      DistanceMetric
	LibraryIDs  []uuid.UUID
	EnabledOnly bool
	SearchText  string
	Offset      int
	Limit       int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Nearest returns documents ordered by ascending vector distance.
	// An empty result is not an error.
	Nearest(ctx context.Context, q NearestQuery) ([]*entity.Document, error)
}
