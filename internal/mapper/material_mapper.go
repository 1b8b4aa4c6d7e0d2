package mapper

import (
	"encoding/json"
	"time"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/model"

	"gorm.io/datatypes"
)

type MaterialMapper struct{}

func NewMaterialMapper() *MaterialMapper {
	return &MaterialMapper{}
}

func (m *MaterialMapper) ToEntity(t *model.TrainingMaterial) *entity.TrainingMaterial {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.TrainingMaterial{
		Id:          t.Id,
		PersonaId:   t.PersonaId,
		FileName:    t.FileName,
		ContentType: t.ContentType,
		StoragePath: t.StoragePath,
		SizeBytes:   t.SizeBytes,
		Status:      entity.MaterialStatus(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *MaterialMapper) ToModel(t *entity.TrainingMaterial) *model.TrainingMaterial {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.TrainingMaterial{
		Id:          t.Id,
		PersonaId:   t.PersonaId,
		FileName:    t.FileName,
		ContentType: t.ContentType,
		StoragePath: t.StoragePath,
		SizeBytes:   t.SizeBytes,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *MaterialMapper) ToEntities(models []*model.TrainingMaterial) []*entity.TrainingMaterial {
	entities := make([]*entity.TrainingMaterial, 0, len(models))
	for _, t := range models {
		entities = append(entities, m.ToEntity(t))
	}
	return entities
}

func (m *MaterialMapper) AppearanceToEntity(a *model.PersonaAppearance) *entity.PersonaAppearance {
	if a == nil {
		return nil
	}
	return &entity.PersonaAppearance{
		Id:          a.Id,
		PersonaId:   a.PersonaId,
		ImagePath:   a.ImagePath,
		ContentType: a.ContentType,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *MaterialMapper) AppearanceToModel(a *entity.PersonaAppearance) *model.PersonaAppearance {
	if a == nil {
		return nil
	}
	return &model.PersonaAppearance{
		Id:          a.Id,
		PersonaId:   a.PersonaId,
		ImagePath:   a.ImagePath,
		ContentType: a.ContentType,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *MaterialMapper) EmotionToEntity(e *model.EmotionAnalysis) *entity.EmotionAnalysis {
	if e == nil {
		return nil
	}

	var raw map[string]interface{}
	if len(e.RawResult) > 0 {
		_ = json.Unmarshal(e.RawResult, &raw)
	}

	return &entity.EmotionAnalysis{
		Id:         e.Id,
		PersonaId:  e.PersonaId,
		SessionId:  e.SessionId,
		Emotion:    e.Emotion,
		Confidence: e.Confidence,
		RawResult:  raw,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *MaterialMapper) EmotionToModel(e *entity.EmotionAnalysis) *model.EmotionAnalysis {
	if e == nil {
		return nil
	}

	raw, _ := json.Marshal(e.RawResult)

	return &model.EmotionAnalysis{
		Id:         e.Id,
		PersonaId:  e.PersonaId,
		SessionId:  e.SessionId,
		Emotion:    e.Emotion,
		Confidence: e.Confidence,
		RawResult:  datatypes.JSON(raw),
		CreatedAt:  e.CreatedAt,
	}
}
