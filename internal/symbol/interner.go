// Package symbol assigns small stable integer ids to strings so that
// navigation payloads stay compact on the wire.
package symbol

import "sync"

// None is the id used for "no value"; the empty string always maps to it
// and it is never handed out for a real value.
const None = -1

// Interner is a bidirectional string<->id map. Ids are assigned once per
// process lifetime, grow monotonically, and are never reused. The table
// cardinality is bounded (a few hundred distinct values), so entries are
// never evicted.
type Interner struct {
	mu   sync.RWMutex
	ids  map[string]int
	text []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]int)}
}

// IDOf returns the stable id for s, assigning one on first encounter.
// The empty string maps to None without being interned.
func (in *Interner) IDOf(s string) int {
	if s == "" {
		return None
	}

	in.mu.RLock()
	id, ok := in.ids[s]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	// Re-check under the write lock: a concurrent caller may have
	// assigned the id between the two lock acquisitions.
	if id, ok := in.ids[s]; ok {
		return id
	}
	id = len(in.text)
	in.ids[s] = id
	in.text = append(in.text, s)
	return id
}

// TextOf returns the string for id, or "" when the id is unknown or None.
// Callers must treat "" as unresolved and degrade gracefully.
func (in *Interner) TextOf(id int) string {
	if id < 0 {
		return ""
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id >= len(in.text) {
		return ""
	}
	return in.text[id]
}

// Len reports the number of interned strings.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.text)
}
