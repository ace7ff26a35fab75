// Package throttle admits or rejects inbound interactions. It combines
// the sliding-window rate limit and the per-user in-flight guard into a
// single admission step so each interaction is throttled exactly once.
package throttle

import (
	"sync"
	"time"
)

// Verdict is the admission decision for one interaction.
type Verdict int

const (
	// Admitted means the interaction may proceed; the caller must call
	// Release when processing finishes.
	Admitted Verdict = iota
	// Throttled means the user exceeded the sliding-window limit. The
	// request is dropped, never queued.
	Throttled
	// Busy means another interaction from the same user is still in
	// flight; treated like a rate-limit rejection.
	Busy
)

// Gate enforces per-user admission control.
type Gate struct {
	window time.Duration
	limit  int
	now    func() time.Time

	mu       sync.Mutex
	hits     map[int64][]time.Time
	inflight map[int64]bool
}

// NewGate creates a gate allowing limit requests per window per user.
func NewGate(window time.Duration, limit int) *Gate {
	return &Gate{
		window:   window,
		limit:    limit,
		now:      time.Now,
		hits:     make(map[int64][]time.Time),
		inflight: make(map[int64]bool),
	}
}

// Admit decides whether an interaction from userID may proceed. The
// window is checked first, then the in-flight flag; an admitted
// interaction counts against the window and sets the flag.
func (g *Gate) Admit(userID int64) Verdict {
	now := g.now()
	cutoff := now.Add(-g.window)

	g.mu.Lock()
	defer g.mu.Unlock()

	recent := g.hits[userID][:0]
	for _, ts := range g.hits[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= g.limit {
		g.hits[userID] = recent
		return Throttled
	}
	if g.inflight[userID] {
		g.hits[userID] = recent
		return Busy
	}

	g.hits[userID] = append(recent, now)
	g.inflight[userID] = true
	return Admitted
}

// Release clears the in-flight flag after an admitted interaction
// finishes, including on timeout.
func (g *Gate) Release(userID int64) {
	g.mu.Lock()
	delete(g.inflight, userID)
	g.mu.Unlock()
}
