package mapper

import (
	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:             s.Id,
		ConversationId: s.ConversationId,
		PersonaId:      s.PersonaId,
		UserId:         s.UserId,
		Status:         entity.SessionStatus(s.Status),
		Language:       s.Language,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:             s.Id,
		ConversationId: s.ConversationId,
		PersonaId:      s.PersonaId,
		UserId:         s.UserId,
		Status:         string(s.Status),
		Language:       s.Language,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}

func (m *SessionMapper) ToEntities(models []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, 0, len(models))
	for _, s := range models {
		entities = append(entities, m.ToEntity(s))
	}
	return entities
}
