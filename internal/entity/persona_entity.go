package entity

import (
	"time"

	"github.com/google/uuid"
)

type PersonaStatus string

const (
	PersonaStatusDraft    PersonaStatus = "draft"
	PersonaStatusReady    PersonaStatus = "ready"
	PersonaStatusDeployed PersonaStatus = "deployed"
)

type Persona struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Name        string
	Description string
	Personality string
	VoiceId     string
	Skills      []string
	Topics      []string
	Status      PersonaStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
