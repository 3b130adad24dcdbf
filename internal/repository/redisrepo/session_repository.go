package redisrepo

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-caresupervisor-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "supervisor:session:"

// SessionRepository is the Redis-backed Session Ledger backend for
// multi-instance deployments. Redis key TTL plays the reaper role: entries
// expire once the inactivity window passes without a Save.
type SessionRepository struct {
	rdb    *redis.Client
	window time.Duration
}

func NewSessionRepository(rdb *redis.Client, window time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, window: window}
}

func (r *SessionRepository) Save(state *store.SessionState) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("[SESSION-REDIS] marshal %s: %v", state.SessionID, err)
		return
	}
	if err := r.rdb.Set(ctx, keyPrefix+state.SessionID, data, r.window).Err(); err != nil {
		// Ledger writes are best-effort bookkeeping; a failed write only
		// costs turn-count continuity, never the response.
		log.Printf("[SESSION-REDIS] save %s: %v", state.SessionID, err)
	}
}

func (r *SessionRepository) Get(sessionID string) (*store.SessionState, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := r.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[SESSION-REDIS] get %s: %v", sessionID, err)
		}
		return nil, false
	}

	var state store.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("[SESSION-REDIS] unmarshal %s: %v", sessionID, err)
		return nil, false
	}
	return &state, true
}

func (r *SessionRepository) Delete(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		log.Printf("[SESSION-REDIS] delete %s: %v", sessionID, err)
	}
}
