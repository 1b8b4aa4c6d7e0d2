package dto

import "github.com/google/uuid"

// ProcessMaterialMessage is the async pipeline payload queued when a training
// material is uploaded.
type ProcessMaterialMessage struct {
	MaterialId uuid.UUID `json:"material_id"`
	PersonaId  uuid.UUID `json:"persona_id"`
}
