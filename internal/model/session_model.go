package model

import (
	"time"

	"github.com/google/uuid"
)

// Session rows are never soft-deleted: history survives until the owning
// persona is cascade-deleted.
type Session struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId string    `gorm:"type:varchar(128);not null"`
	PersonaId      uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_user_status"`
	Status         string    `gorm:"type:varchar(16);not null;default:'active';index:idx_sessions_user_status"`
	Language       string    `gorm:"type:varchar(16);not null;default:'en'"`
	StartedAt      time.Time `gorm:"autoCreateTime"`
	EndedAt        *time.Time
}

func (Session) TableName() string {
	return "sessions"
}
