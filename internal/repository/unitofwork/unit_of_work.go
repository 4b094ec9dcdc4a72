package unitofwork

import (
	"context"

	"knowledge-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	LibraryRepository() contract.LibraryRepository
	DocumentRepository() contract.DocumentRepository
	QuestionRepository() contract.QuestionRepository
	AssistantRepository() contract.AssistantRepository
	ChatRepository() contract.ChatRepository
	MessageRepository() contract.MessageRepository
}
