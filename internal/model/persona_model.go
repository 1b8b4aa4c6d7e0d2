package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Persona struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Name        string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text"`
	Personality string         `gorm:"type:text"`
	VoiceId     string         `gorm:"type:varchar(128)"`
	Skills      datatypes.JSON `gorm:"type:jsonb"`
	Topics      datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"type:varchar(32);not null;default:'draft';index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Persona) TableName() string {
	return "personas"
}
