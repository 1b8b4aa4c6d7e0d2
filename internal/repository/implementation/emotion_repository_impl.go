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

type EmotionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MaterialMapper
}

func NewEmotionRepository(db *gorm.DB) contract.EmotionRepository {
	return &EmotionRepositoryImpl{
		db:     db,
		mapper: mapper.NewMaterialMapper(),
	}
}

func (r *EmotionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmotionRepositoryImpl) Create(ctx context.Context, analysis *entity.EmotionAnalysis) error {
	m := r.mapper.EmotionToModel(analysis)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*analysis = *r.mapper.EmotionToEntity(m)
	return nil
}

func (r *EmotionRepositoryImpl) DeleteAllByPersonaId(ctx context.Context, personaId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("persona_id = ?", personaId).Delete(&model.EmotionAnalysis{}).Error
}

func (r *EmotionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmotionAnalysis, error) {
	var models []*model.EmotionAnalysis
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EmotionAnalysis, 0, len(models))
	for _, m := range models {
		entities = append(entities, r.mapper.EmotionToEntity(m))
	}
	return entities, nil
}
