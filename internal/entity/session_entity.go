package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// Session is one bounded real-time interaction between a user and a persona.
// Created when a call starts; marked ended on normal end, sign-out, or the
// stale-session sweep that runs before the next call starts.
type Session struct {
	Id             uuid.UUID
	ConversationId string
	PersonaId      uuid.UUID
	UserId         uuid.UUID
	Status         SessionStatus
	Language       string
	StartedAt      time.Time
	EndedAt        *time.Time
}
