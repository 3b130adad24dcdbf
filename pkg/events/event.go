package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CRITICAL_ALERT").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
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

const TypeCriticalAlert = "CRITICAL_ALERT"

// NewCriticalAlert builds the event raised when the emergency sentinel matches
// a critical rule. The payload carries rule ids only, never message content.
func NewCriticalAlert(userID, sessionID string, ruleIDs []string) BaseEvent {
	return BaseEvent{
		Type: TypeCriticalAlert,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"rule_ids":   ruleIDs,
		},
		OccurredAt: time.Now(),
	}
}
