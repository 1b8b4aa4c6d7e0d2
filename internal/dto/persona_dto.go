package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePersonaRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description string   `json:"description"`
	Personality string   `json:"personality"`
	VoiceId     string   `json:"voice_id"`
	Skills      []string `json:"skills"`
	Topics      []string `json:"topics"`
}

type CreatePersonaResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdatePersonaRequest struct {
	Id          uuid.UUID
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description string   `json:"description"`
	Personality string   `json:"personality"`
	VoiceId     string   `json:"voice_id"`
	Skills      []string `json:"skills"`
	Topics      []string `json:"topics"`
}

type UpdatePersonaResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowPersonaResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Personality string     `json:"personality"`
	VoiceId     string     `json:"voice_id"`
	Skills      []string   `json:"skills"`
	Topics      []string   `json:"topics"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ListPersonaResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	VoiceId   string    `json:"voice_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type DeployPersonaResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type AddMaterialRequest struct {
	PersonaId   uuid.UUID
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type"`
	StoragePath string `json:"storage_path" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

type AddMaterialResponse struct {
	Id uuid.UUID `json:"id"`
}

type MaterialResponse struct {
	Id          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type AddAppearanceRequest struct {
	PersonaId   uuid.UUID
	ImagePath   string `json:"image_path" validate:"required"`
	ContentType string `json:"content_type"`
}

type AddAppearanceResponse struct {
	Id uuid.UUID `json:"id"`
}

type AddEmotionRequest struct {
	PersonaId  uuid.UUID
	SessionId  *uuid.UUID             `json:"session_id"`
	Emotion    string                 `json:"emotion" validate:"required,max=64"`
	Confidence float64                `json:"confidence" validate:"gte=0,lte=1"`
	RawResult  map[string]interface{} `json:"raw_result"`
}

type AddEmotionResponse struct {
	Id uuid.UUID `json:"id"`
}

type EmotionResponse struct {
	Id         uuid.UUID  `json:"id"`
	SessionId  *uuid.UUID `json:"session_id,omitempty"`
	Emotion    string     `json:"emotion"`
	Confidence float64    `json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
}
