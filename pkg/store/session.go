package store

import "time"

// SessionState is the per-conversation ledger entry.
// It is owned exclusively by the Session Ledger: created on the first turn of
// a session id, updated by the request currently handling a turn for that
// session (single writer per session), and evicted after the configured
// inactivity window. It is independent of any HTTP auth session.
type SessionState struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	TurnCount      int       `json:"turn_count"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// EmergencyFlag records that at least one turn of this session matched a
	// critical rule. Severity itself is never cached across turns.
	EmergencyFlag bool `json:"emergency_flag"`
}
