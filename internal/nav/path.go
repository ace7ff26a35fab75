// Package nav implements the three-level menu state machine: it encodes
// the user's position into compact button payloads and computes the next
// menu or the terminal value for a decoded position.
package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gatebot/internal/symbol"
)

// Level identifies the selection a path represents. The set is closed;
// every switch over it handles all three cases.
type Level int

const (
	// LevelKey means the path carries a selected Key.
	LevelKey Level = iota
	// LevelOpt1 means Key and Option1 are selected.
	LevelOpt1
	// LevelOpt2 means the full path is selected.
	LevelOpt2
)

var levelTokens = map[Level]string{
	LevelKey:  "key",
	LevelOpt1: "opt1",
	LevelOpt2: "opt2",
}

// String returns the wire token for the level.
func (l Level) String() string {
	if t, ok := levelTokens[l]; ok {
		return t
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func parseLevel(token string) (Level, bool) {
	for l, t := range levelTokens {
		if t == token {
			return l, true
		}
	}
	return 0, false
}

// Path is the user's position in the tree. Ids below the path's level
// are symbol.None. An id that fails to resolve against the current
// interner generation is treated as unknown, not as an error.
type Path struct {
	Level  Level
	KeyID  int
	Opt1ID int
	Opt2ID int
}

// ErrBadPayload reports an undecodable button payload.
var ErrBadPayload = errors.New("nav: bad payload")

// Encode renders the path as colon-separated tokens
// "level:keyId:opt1Id:opt2Id" with empty tokens for unused levels,
// e.g. "key:7::".
func (p Path) Encode() string {
	return strings.Join([]string{
		p.Level.String(),
		encodeID(p.KeyID),
		encodeID(p.Opt1ID),
		encodeID(p.Opt2ID),
	}, ":")
}

// Decode parses a payload produced by Encode. An empty id token decodes
// to symbol.None; this is distinct from a positive id that no longer
// resolves, which callers detect via the interner.
func Decode(payload string) (Path, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 4 {
		return Path{}, fmt.Errorf("%w: %q", ErrBadPayload, payload)
	}
	level, ok := parseLevel(parts[0])
	if !ok {
		return Path{}, fmt.Errorf("%w: unknown level %q", ErrBadPayload, parts[0])
	}
	ids := make([]int, 3)
	for i, tok := range parts[1:] {
		id, err := decodeID(tok)
		if err != nil {
			return Path{}, fmt.Errorf("%w: id %q", ErrBadPayload, tok)
		}
		ids[i] = id
	}
	return Path{Level: level, KeyID: ids[0], Opt1ID: ids[1], Opt2ID: ids[2]}, nil
}

func encodeID(id int) string {
	if id == symbol.None {
		return ""
	}
	return strconv.Itoa(id)
}

func decodeID(tok string) (int, error) {
	if tok == "" {
		return symbol.None, nil
	}
	id, err := strconv.Atoi(tok)
	if err != nil || id < 0 {
		return 0, ErrBadPayload
	}
	return id, nil
}
