package service

import (
	"context"
	"testing"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/pkg/apperr"
	"knowledge-assistant-be/pkg/jobs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCreatesPendingQuestionAndEnqueues(t *testing.T) {
	questions := &fakeQuestionRepo{}
	bus := &fakeBus{}

	svc := NewQuestionService(&fakeUowFactory{uow: &fakeUow{questions: questions}}, bus)

	res, err := svc.Ask(context.Background(), uuid.New(), &dto.AskQuestionRequest{
		Text: "how do I page the on-call?",
	})

	require.NoError(t, err)
	assert.Equal(t, constant.QuestionStatusPending, res.Status)

	require.Len(t, questions.created, 1)
	assert.Equal(t, constant.QuestionStatusPending, questions.created[0].Status)
	assert.Empty(t, questions.created[0].LibraryIdsIncluded)

	require.Len(t, bus.calls, 1)
	assert.Equal(t, constant.TopicAnswerQuestion, bus.calls[0].topic)
	assert.Equal(t, jobs.PriorityHigh, bus.calls[0].priority)
}

func TestAskSingleLibraryNarrowsScope(t *testing.T) {
	questions := &fakeQuestionRepo{}
	libraryId := uuid.New()

	svc := NewQuestionService(&fakeUowFactory{uow: &fakeUow{questions: questions}}, &fakeBus{})

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.AskQuestionRequest{
		Text:      "scoped question",
		LibraryId: &libraryId,
	})

	require.NoError(t, err)
	require.Len(t, questions.created, 1)
	assert.Equal(t, []uuid.UUID{libraryId}, questions.created[0].LibraryIdsIncluded)
}

func TestAskRejectsBothLibraryFields(t *testing.T) {
	libraryId := uuid.New()
	bus := &fakeBus{}

	svc := NewQuestionService(&fakeUowFactory{uow: &fakeUow{questions: &fakeQuestionRepo{}}}, bus)

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.AskQuestionRequest{
		Text:       "ambiguous scope",
		LibraryId:  &libraryId,
		LibraryIds: []uuid.UUID{uuid.New()},
	})

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, bus.calls)
}
