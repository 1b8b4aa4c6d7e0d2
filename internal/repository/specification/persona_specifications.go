package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy scopes a query to a single user's rows. Every persona read path
// applies it so one user can never see another user's personas.
type OwnedBy struct {
	UserId uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// ByStatus filters personas by lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByPersonaID filters child rows (materials, appearances, sessions) by persona
type ByPersonaID struct {
	PersonaId uuid.UUID
}

func (s ByPersonaID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("persona_id = ?", s.PersonaId)
}
