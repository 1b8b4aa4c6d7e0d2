package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EmotionAnalysis struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PersonaId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId  *uuid.UUID     `gorm:"type:uuid;index"`
	Emotion    string         `gorm:"type:varchar(64);not null"`
	Confidence float64        `gorm:"not null;default:0"`
	RawResult  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (EmotionAnalysis) TableName() string {
	return "emotion_analyses"
}
