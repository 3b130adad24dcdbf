package session

import (
	"time"

	"ai-caresupervisor-be/internal/repository/contract"
	"ai-caresupervisor-be/pkg/store"
)

// Ledger mediates all SessionState access. It is constructed at startup and
// injected into the supervisor service; there is no module-level singleton.
type Ledger struct {
	repo contract.ISessionRepository
}

func NewLedger(repo contract.ISessionRepository) *Ledger {
	return &Ledger{repo: repo}
}

// GetOrCreate returns the existing state for a session id or a fresh one.
// The returned value is the turn's private copy: nothing is persisted until
// Touch, so a crashed or cancelled turn leaves no partial mutation behind.
func (l *Ledger) GetOrCreate(userID, sessionID string) *store.SessionState {
	if state, found := l.repo.Get(sessionID); found {
		copied := *state
		return &copied
	}
	return &store.SessionState{
		SessionID: sessionID,
		UserID:    userID,
	}
}

// Peek exposes current state for observability without creating an entry.
func (l *Ledger) Peek(sessionID string) (*store.SessionState, bool) {
	return l.repo.Get(sessionID)
}

// Touch finalizes a completed turn: bumps the turn count, stamps activity,
// and persists. Called only after the response is composed, so an aborted
// turn never advances the count.
func (l *Ledger) Touch(state *store.SessionState, emergency bool) {
	state.TurnCount++
	state.LastActivityAt = time.Now()
	if emergency {
		state.EmergencyFlag = true
	}
	l.repo.Save(state)
}
