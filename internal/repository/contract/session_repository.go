package contract

import "ai-caresupervisor-be/pkg/store"

// ISessionRepository is the storage behind the Session Ledger. The backend
// (in-process or Redis) is chosen at bootstrap and injected; nothing else in
// the system holds session state.
//
// Writes for a given session id only ever come from the request currently
// handling a turn for that session. Reads may occur concurrently.
type ISessionRepository interface {
	Get(sessionID string) (*store.SessionState, bool)
	Save(state *store.SessionState)
	Delete(sessionID string)
}
