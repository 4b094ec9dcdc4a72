package rag

import (
	"context"
	"testing"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
	calls  int
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.vector, nil
}

type stubDocuments struct {
	contract.DocumentRepository
	lastQuery contract.NearestQuery
	results   []*entity.Document
}

func (d *stubDocuments) Nearest(ctx context.Context, q contract.NearestQuery) ([]*entity.Document, error) {
	d.lastQuery = q
	return d.results, nil
}

func TestRetrieveRequiresQueryText(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubDocuments{})

	_, err := r.Retrieve(context.Background(), Query{})

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestRetrieveAppliesDefaultsAndClamps(t *testing.T) {
	docs := &stubDocuments{}
	r := NewRetriever(&stubEmbedder{vector: []float32{1}}, docs)

	_, err := r.Retrieve(context.Background(), Query{Text: "q", Limit: 10000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, maxLimit, docs.lastQuery.Limit)
	assert.Zero(t, docs.lastQuery.Offset)
	assert.Equal(t, contract.MetricEuclidean, docs.lastQuery.Metric)

	_, err = r.Retrieve(context.Background(), Query{Text: "q", Metric: contract.MetricCosine})
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, docs.lastQuery.Limit)
	assert.Equal(t, contract.MetricCosine, docs.lastQuery.Metric)
}

func TestRelatedExcludesSourceDocument(t *testing.T) {
	libraryId := uuid.New()
	source := &entity.Document{
		Id:        uuid.New(),
		LibraryId: libraryId,
		Embedding: []float32{0.1, 0.2},
	}
	other := &entity.Document{Id: uuid.New(), LibraryId: libraryId}

	docs := &stubDocuments{results: []*entity.Document{source, other}}
	r := NewRetriever(&stubEmbedder{}, docs)

	related, err := r.Related(context.Background(), source, 5)

	require.NoError(t, err)
	// One extra row is requested to make room for the source document.
	assert.Equal(t, 6, docs.lastQuery.Limit)
	assert.Equal(t, []uuid.UUID{libraryId}, docs.lastQuery.LibraryIDs)
	require.Len(t, related, 1)
	assert.Equal(t, other.Id, related[0].Id)
}

func TestRelatedRejectsUnembeddedDocument(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubDocuments{})

	_, err := r.Related(context.Background(), &entity.Document{Id: uuid.New()}, 5)

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
