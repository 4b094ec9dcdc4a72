package implementation

import (
	"context"
	"errors"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/mapper"
	"knowledge-assistant-be/internal/model"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssistantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssistantMapper
}

func NewAssistantRepository(db *gorm.DB) contract.AssistantRepository {
	return &AssistantRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssistantMapper(),
	}
}

func (r *AssistantRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AssistantRepositoryImpl) Create(ctx context.Context, assistant *entity.Assistant) error {
	m := r.mapper.ToModel(assistant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*assistant = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssistantRepositoryImpl) Update(ctx context.Context, assistant *entity.Assistant) error {
	m := r.mapper.ToModel(assistant)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*assistant = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssistantRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Assistant{}, id).Error
}

func (r *AssistantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error) {
	var m model.Assistant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssistantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assistant, error) {
	var models []*model.Assistant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Assistant, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
