package specification

import (
	"gorm.io/gorm"
)

// ActiveOnly filters sessions still marked active
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "active")
}

// ByConversationID filters sessions by the provider-side conversation id
type ByConversationID struct {
	ConversationId string
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationId)
}
