package entity

import (
	"time"

	"github.com/google/uuid"
)

type MaterialStatus string

const (
	MaterialStatusPending   MaterialStatus = "pending"
	MaterialStatusProcessed MaterialStatus = "processed"
	MaterialStatusFailed    MaterialStatus = "failed"
)

// TrainingMaterial is uploaded-file metadata attached to a persona. The file
// itself lives in object storage owned by an external collaborator; only the
// reference is kept here.
type TrainingMaterial struct {
	Id          uuid.UUID
	PersonaId   uuid.UUID
	FileName    string
	ContentType string
	StoragePath string
	SizeBytes   int64
	Status      MaterialStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type PersonaAppearance struct {
	Id          uuid.UUID
	PersonaId   uuid.UUID
	ImagePath   string
	ContentType string
	CreatedAt   time.Time
}

type EmotionAnalysis struct {
	Id         uuid.UUID
	PersonaId  uuid.UUID
	SessionId  *uuid.UUID
	Emotion    string
	Confidence float64
	RawResult  map[string]interface{}
	CreatedAt  time.Time
}
