package model

import (
	"time"

	"github.com/google/uuid"
)

type PersonaAppearance struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PersonaId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ImagePath   string    `gorm:"type:varchar(512);not null"`
	ContentType string    `gorm:"type:varchar(128)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (PersonaAppearance) TableName() string {
	return "persona_appearances"
}
