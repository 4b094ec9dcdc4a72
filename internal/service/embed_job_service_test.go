package service

import (
	"context"
	"testing"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/pkg/jobs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResyncMissingEnqueuesLowPriorityJobs(t *testing.T) {
	orphans := []*entity.Document{
		{Id: uuid.New(), Title: "a"},
		{Id: uuid.New(), Title: "b"},
	}

	documents := &fakeDocumentRepo{
		findAllFn: func(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
			return orphans, nil
		},
	}
	bus := &fakeBus{}

	svc := NewEmbedJobService(bus,
		&fakeUowFactory{uow: &fakeUow{documents: documents}},
		&fakeEmbedder{}, nil, logger.NewNoopLogger())

	touched, err := svc.ResyncMissing(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, touched)
	require.Len(t, bus.calls, 2)
	for i, call := range bus.calls {
		assert.Equal(t, constant.TopicEmbedDocument, call.topic)
		assert.Equal(t, jobs.PriorityLow, call.priority)
		payload, ok := call.payload.(dto.EmbedDocumentJobMessage)
		require.True(t, ok)
		assert.Equal(t, orphans[i].Id, payload.DocumentId)
	}
}

func TestResyncMissingWithNothingToDo(t *testing.T) {
	documents := &fakeDocumentRepo{
		findAllFn: func(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
			return nil, nil
		},
	}
	bus := &fakeBus{}

	svc := NewEmbedJobService(bus,
		&fakeUowFactory{uow: &fakeUow{documents: documents}},
		&fakeEmbedder{}, nil, logger.NewNoopLogger())

	touched, err := svc.ResyncMissing(context.Background())

	require.NoError(t, err)
	assert.Zero(t, touched)
	assert.Empty(t, bus.calls)
}
