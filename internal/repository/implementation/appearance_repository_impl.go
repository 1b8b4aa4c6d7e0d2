package implementation

import (
	"context"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/mapper"
	"neuraconnect-be/internal/model"
	"neuraconnect-be/internal/repository/contract"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppearanceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MaterialMapper
}

func NewAppearanceRepository(db *gorm.DB) contract.AppearanceRepository {
	return &AppearanceRepositoryImpl{
		db:     db,
		mapper: mapper.NewMaterialMapper(),
	}
}

func (r *AppearanceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AppearanceRepositoryImpl) Create(ctx context.Context, appearance *entity.PersonaAppearance) error {
	m := r.mapper.AppearanceToModel(appearance)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*appearance = *r.mapper.AppearanceToEntity(m)
	return nil
}

func (r *AppearanceRepositoryImpl) DeleteAllByPersonaId(ctx context.Context, personaId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("persona_id = ?", personaId).Delete(&model.PersonaAppearance{}).Error
}

func (r *AppearanceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PersonaAppearance, error) {
	var models []*model.PersonaAppearance
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PersonaAppearance, 0, len(models))
	for _, m := range models {
		entities = append(entities, r.mapper.AppearanceToEntity(m))
	}
	return entities, nil
}
