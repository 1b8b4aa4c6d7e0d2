package implementation

import (
	"context"
	"errors"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/mapper"
	"neuraconnect-be/internal/model"
	"neuraconnect-be/internal/repository/contract"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MaterialMapper
}

func NewMaterialRepository(db *gorm.DB) contract.MaterialRepository {
	return &MaterialRepositoryImpl{
		db:     db,
		mapper: mapper.NewMaterialMapper(),
	}
}

func (r *MaterialRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MaterialRepositoryImpl) Create(ctx context.Context, material *entity.TrainingMaterial) error {
	m := r.mapper.ToModel(material)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.ToEntity(m)
	return nil
}

func (r *MaterialRepositoryImpl) Update(ctx context.Context, material *entity.TrainingMaterial) error {
	m := r.mapper.ToModel(material)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.ToEntity(m)
	return nil
}

func (r *MaterialRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TrainingMaterial{}, id).Error
}

func (r *MaterialRepositoryImpl) DeleteAllByPersonaIdUnscoped(ctx context.Context, personaId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("persona_id = ?", personaId).Delete(&model.TrainingMaterial{}).Error
}

func (r *MaterialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TrainingMaterial, error) {
	var m model.TrainingMaterial
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MaterialRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TrainingMaterial, error) {
	var models []*model.TrainingMaterial
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MaterialRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TrainingMaterial{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
