package service

import (
	"context"
	"errors"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/jobs"
	"knowledge-assistant-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// The fakes below stub only the methods a given test exercises. An
// unstubbed call panics through the embedded nil interface, which is
// the failure we want when a test touches an unexpected code path.

type fakeQuestionRepo struct {
	contract.QuestionRepository
	findOneFn      func(ctx context.Context, specs ...specification.Specification) (*entity.Question, error)
	updateFn       func(ctx context.Context, q *entity.Question) error
	updateStatusFn func(ctx context.Context, id uuid.UUID, status string) error

	statusUpdates []string
	updated       []*entity.Question
	created       []*entity.Question
}

func (r *fakeQuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	r.created = append(r.created, q)
	return nil
}

func (r *fakeQuestionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Question, error) {
	return r.findOneFn(ctx, specs...)
}

func (r *fakeQuestionRepo) Update(ctx context.Context, q *entity.Question) error {
	copied := *q
	r.updated = append(r.updated, &copied)
	if r.updateFn != nil {
		return r.updateFn(ctx, q)
	}
	return nil
}

func (r *fakeQuestionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.statusUpdates = append(r.statusUpdates, status)
	if r.updateStatusFn != nil {
		return r.updateStatusFn(ctx, id, status)
	}
	return nil
}

type fakeDocumentRepo struct {
	contract.DocumentRepository
	findOneFn func(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	findAllFn func(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	nearestFn func(ctx context.Context, q contract.NearestQuery) ([]*entity.Document, error)
	createFn  func(ctx context.Context, doc *entity.Document) error
	updateFn  func(ctx context.Context, doc *entity.Document) error

	created []*entity.Document
	updated []*entity.Document
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return r.findOneFn(ctx, specs...)
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return r.findAllFn(ctx, specs...)
}

func (r *fakeDocumentRepo) Nearest(ctx context.Context, q contract.NearestQuery) ([]*entity.Document, error) {
	return r.nearestFn(ctx, q)
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	r.created = append(r.created, doc)
	if r.createFn != nil {
		return r.createFn(ctx, doc)
	}
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	r.updated = append(r.updated, doc)
	if r.updateFn != nil {
		return r.updateFn(ctx, doc)
	}
	return nil
}

type fakeLibraryRepo struct {
	contract.LibraryRepository
	findOneFn func(ctx context.Context, specs ...specification.Specification) (*entity.Library, error)
	findAllFn func(ctx context.Context, specs ...specification.Specification) ([]*entity.Library, error)
}

func (r *fakeLibraryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Library, error) {
	return r.findOneFn(ctx, specs...)
}

func (r *fakeLibraryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Library, error) {
	return r.findAllFn(ctx, specs...)
}

type fakeMessageRepo struct {
	contract.MessageRepository
	findOneFn func(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	findAllFn func(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	updateFn  func(ctx context.Context, m *entity.Message) error

	created []*entity.Message
	updated []*entity.Message
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	return r.findOneFn(ctx, specs...)
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	return r.findAllFn(ctx, specs...)
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	r.created = append(r.created, m)
	return nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, m *entity.Message) error {
	copied := *m
	r.updated = append(r.updated, &copied)
	if r.updateFn != nil {
		return r.updateFn(ctx, m)
	}
	return nil
}

type fakeChatRepo struct {
	contract.ChatRepository
	findOneFn func(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)

	created []*entity.Chat
}

func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	return r.findOneFn(ctx, specs...)
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.created = append(r.created, chat)
	return nil
}

type fakeAssistantRepo struct {
	contract.AssistantRepository
	findOneFn func(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error)
}

func (r *fakeAssistantRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error) {
	return r.findOneFn(ctx, specs...)
}

type fakeUow struct {
	unitofwork.UnitOfWork
	questions  *fakeQuestionRepo
	documents  *fakeDocumentRepo
	libraries  *fakeLibraryRepo
	messages   *fakeMessageRepo
	chats      *fakeChatRepo
	assistants *fakeAssistantRepo
}

func (u *fakeUow) QuestionRepository() contract.QuestionRepository   { return u.questions }
func (u *fakeUow) DocumentRepository() contract.DocumentRepository   { return u.documents }
func (u *fakeUow) LibraryRepository() contract.LibraryRepository     { return u.libraries }
func (u *fakeUow) MessageRepository() contract.MessageRepository     { return u.messages }
func (u *fakeUow) ChatRepository() contract.ChatRepository           { return u.chats }
func (u *fakeUow) AssistantRepository() contract.AssistantRepository { return u.assistants }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type enqueued struct {
	topic    string
	payload  interface{}
	priority jobs.Priority
}

type fakeBus struct {
	enqueueErr error
	calls      []enqueued
}

func (b *fakeBus) Enqueue(ctx context.Context, topic string, payload interface{}, priority jobs.Priority) error {
	b.calls = append(b.calls, enqueued{topic: topic, payload: payload, priority: priority})
	return b.enqueueErr
}

func (b *fakeBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBus) Close() error { return nil }

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.vector != nil {
		return e.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

type fixedCounter struct {
	tokens int
	err    error
}

func (c fixedCounter) Count(text string) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.tokens, nil
}
