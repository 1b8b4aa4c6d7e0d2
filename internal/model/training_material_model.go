package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainingMaterial struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PersonaId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	FileName    string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(128)"`
	StoragePath string         `gorm:"type:varchar(512);not null"`
	SizeBytes   int64          `gorm:"not null;default:0"`
	Status      string         `gorm:"type:varchar(32);not null;default:'pending'"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (TrainingMaterial) TableName() string {
	return "training_materials"
}
