package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "user.signed_out").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUserSignedOut = "user.signed_out"
	TypeSessionEnded  = "session.ended"
)

// NewUserSignedOut is published on sign-out; the session service reacts by
// ending the user's active call.
func NewUserSignedOut(userID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeUserSignedOut,
		Data: map[string]interface{}{
			"user_id": userID.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionEnded(sessionID, userID uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"user_id":    userID.String(),
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}
