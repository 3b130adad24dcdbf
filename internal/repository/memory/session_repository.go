package memory

import (
	"time"

	"ai-caresupervisor-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the default in-process Session Ledger backend. The
// go-cache janitor doubles as the reaper: entries whose last activity exceeds
// the inactivity window are evicted in the background.
type SessionRepository struct {
	cache  *cache.Cache
	window time.Duration
}

// NewSessionRepository creates the backend with the configured inactivity
// window. The janitor purges expired entries at a quarter of the window,
// floored at one second so short test windows still get reaped.
func NewSessionRepository(window time.Duration) *SessionRepository {
	purgeInterval := window / 4
	if purgeInterval < time.Second {
		purgeInterval = time.Second
	}
	return &SessionRepository{
		cache:  cache.New(window, purgeInterval),
		window: window,
	}
}

// Save stores the state and resets its inactivity clock.
func (r *SessionRepository) Save(state *store.SessionState) {
	r.cache.Set(state.SessionID, state, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.SessionState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.SessionState), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
