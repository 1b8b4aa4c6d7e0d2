package mapper

import (
	"encoding/json"
	"time"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PersonaMapper struct{}

func NewPersonaMapper() *PersonaMapper {
	return &PersonaMapper{}
}

func (m *PersonaMapper) ToEntity(p *model.Persona) *entity.Persona {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	var skills []string
	if len(p.Skills) > 0 {
		_ = json.Unmarshal(p.Skills, &skills)
	}

	var topics []string
	if len(p.Topics) > 0 {
		_ = json.Unmarshal(p.Topics, &topics)
	}

	return &entity.Persona{
		Id:          p.Id,
		UserId:      p.UserId,
		Name:        p.Name,
		Description: p.Description,
		Personality: p.Personality,
		VoiceId:     p.VoiceId,
		Skills:      skills,
		Topics:      topics,
		Status:      entity.PersonaStatus(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   p.DeletedAt.Valid,
	}
}

func (m *PersonaMapper) ToModel(p *entity.Persona) *model.Persona {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	skills, _ := json.Marshal(p.Skills)
	topics, _ := json.Marshal(p.Topics)

	return &model.Persona{
		Id:          p.Id,
		UserId:      p.UserId,
		Name:        p.Name,
		Description: p.Description,
		Personality: p.Personality,
		VoiceId:     p.VoiceId,
		Skills:      datatypes.JSON(skills),
		Topics:      datatypes.JSON(topics),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *PersonaMapper) ToEntities(models []*model.Persona) []*entity.Persona {
	entities := make([]*entity.Persona, 0, len(models))
	for _, p := range models {
		entities = append(entities, m.ToEntity(p))
	}
	return entities
}
