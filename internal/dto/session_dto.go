package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartCallRequest struct {
	PersonaId uuid.UUID `json:"persona_id" validate:"required"`
	Language  string    `json:"language" validate:"omitempty,bcp47_language_tag"`
}

type StartCallResponse struct {
	SessionId      uuid.UUID `json:"session_id"`
	ConversationId string    `json:"conversation_id"`
	StartedAt      time.Time `json:"started_at"`
}

type EndCallResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	EndedAt   time.Time `json:"ended_at"`
}

type SendTextRequest struct {
	SessionId uuid.UUID
	Text      string `json:"text" validate:"required"`
}

type SessionRecordResponse struct {
	Id             uuid.UUID  `json:"id"`
	ConversationId string     `json:"conversation_id"`
	PersonaId      uuid.UUID  `json:"persona_id"`
	Status         string     `json:"status"`
	Language       string     `json:"language"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
}
