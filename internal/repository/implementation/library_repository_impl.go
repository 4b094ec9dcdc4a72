package implementation

import (
	"context"
	"errors"
	"time"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/model"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type LibraryRepositoryImpl struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) contract.LibraryRepository {
	return &LibraryRepositoryImpl{db: db}
}

func (r *LibraryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LibraryRepositoryImpl) toEntity(m *model.Library) *entity.Library {
	if m == nil {
		return nil
	}
	var updatedAt *time.Time
	if !m.UpdatedAt.IsZero() {
		t := m.UpdatedAt
		updatedAt = &t
	}
	return &entity.Library{
		Id:        m.Id,
		OwnerId:   m.OwnerId,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (r *LibraryRepositoryImpl) Create(ctx context.Context, library *entity.Library) error {
	m := &model.Library{
		Id:        library.Id,
		OwnerId:   library.OwnerId,
		Name:      library.Name,
		CreatedAt: library.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*library = *r.toEntity(m)
	return nil
}

func (r *LibraryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Library, error) {
	var m model.Library
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *LibraryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Library, error) {
	var models []*model.Library
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Library, len(models))
	for i, m := range models {
		entities[i] = r.toEntity(m)
	}
	return entities, nil
}
