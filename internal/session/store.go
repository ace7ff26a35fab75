// Package session tracks per-user conversation state for the process
// lifetime. Nothing here survives a restart: every user is re-welcomed
// after a deployment, which is a deliberate product decision.
package session

import "sync"

const shardCount = 16

type shard struct {
	mu       sync.RWMutex
	welcomed map[int64]bool
}

// Store is a sharded in-memory session store keyed by user id. Sharding
// keeps unrelated users from contending on one lock.
type Store struct {
	shards [shardCount]*shard
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{welcomed: make(map[int64]bool)}
	}
	return s
}

func (s *Store) shardFor(userID int64) *shard {
	idx := userID % shardCount
	if idx < 0 {
		idx = -idx
	}
	return s.shards[idx]
}

// IsWelcomed reports whether the user already received the greeting in
// this process lifetime.
func (s *Store) IsWelcomed(userID int64) bool {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.welcomed[userID]
}

// MarkWelcomed records that the greeting was delivered.
func (s *Store) MarkWelcomed(userID int64) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	sh.welcomed[userID] = true
	sh.mu.Unlock()
}

// Reset forgets the user's session; backs the explicit restart command.
func (s *Store) Reset(userID int64) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	delete(sh.welcomed, userID)
	sh.mu.Unlock()
}
