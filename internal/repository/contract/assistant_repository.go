package contract

import (
	"context"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AssistantRepository interface {
	Create(ctx context.Context, assistant *entity.Assistant) error
	Update(ctx context.Context, assistant *entity.Assistant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assistant, error)
}

type LibraryRepository interface {
	Create(ctx context.Context, library *entity.Library) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Library, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Library, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
