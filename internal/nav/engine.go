package nav

import (
	"sort"

	"gatebot/internal/symbol"
	"gatebot/internal/table"
)

// Outcome classifies what a navigation step produced.
type Outcome int

const (
	// OutcomeMenu means the step yields another level of choices.
	OutcomeMenu Outcome = iota
	// OutcomeTerminal means the full path resolved to its terminal value.
	OutcomeTerminal
	// OutcomeDeadEnd means the selected prefix has no children.
	OutcomeDeadEnd
	// OutcomeNotFound means a decoded id no longer resolves, or no row
	// matches the full path (stale ids after a dataset refresh).
	OutcomeNotFound
)

// Choice is one selectable button: a label and its encoded payload.
type Choice struct {
	Label   string
	Payload string
}

// Result is the product of a navigation step.
type Result struct {
	Outcome  Outcome
	Choices  []Choice
	Terminal string
}

// Engine computes menus and terminal values over dataset snapshots.
type Engine struct {
	syms *symbol.Interner
}

// NewEngine creates an engine resolving ids through syms.
func NewEngine(syms *symbol.Interner) *Engine {
	return &Engine{syms: syms}
}

// Root enumerates the distinct non-empty Key values as the first menu.
// Ordering is always by string value, never by row order or id.
func (e *Engine) Root(rows []table.Row) Result {
	values := distinct(rows, func(r table.Row) (string, bool) {
		return r.Key, r.Key != ""
	})
	if len(values) == 0 {
		return Result{Outcome: OutcomeDeadEnd}
	}
	choices := make([]Choice, 0, len(values))
	for _, v := range values {
		p := Path{Level: LevelKey, KeyID: e.syms.IDOf(v), Opt1ID: symbol.None, Opt2ID: symbol.None}
		choices = append(choices, Choice{Label: v, Payload: p.Encode()})
	}
	return Result{Outcome: OutcomeMenu, Choices: choices}
}

// Advance computes the next step for a decoded path. Unresolvable ids
// degrade to OutcomeNotFound; empty enumerations to OutcomeDeadEnd.
// Neither is an error.
func (e *Engine) Advance(rows []table.Row, p Path) Result {
	key := e.syms.TextOf(p.KeyID)
	if key == "" {
		return Result{Outcome: OutcomeNotFound}
	}

	switch p.Level {
	case LevelKey:
		values := distinct(rows, func(r table.Row) (string, bool) {
			return r.Option1, r.Key == key && r.Option1 != ""
		})
		return e.menu(values, func(v string) Path {
			return Path{Level: LevelOpt1, KeyID: p.KeyID, Opt1ID: e.syms.IDOf(v), Opt2ID: symbol.None}
		})

	case LevelOpt1:
		opt1 := e.syms.TextOf(p.Opt1ID)
		if opt1 == "" {
			return Result{Outcome: OutcomeNotFound}
		}
		values := distinct(rows, func(r table.Row) (string, bool) {
			return r.Option2, r.Key == key && r.Option1 == opt1 && r.Option2 != ""
		})
		return e.menu(values, func(v string) Path {
			return Path{Level: LevelOpt2, KeyID: p.KeyID, Opt1ID: p.Opt1ID, Opt2ID: e.syms.IDOf(v)}
		})

	case LevelOpt2:
		opt1 := e.syms.TextOf(p.Opt1ID)
		opt2 := e.syms.TextOf(p.Opt2ID)
		if opt1 == "" || opt2 == "" {
			return Result{Outcome: OutcomeNotFound}
		}
		for _, r := range rows {
			if r.Key == key && r.Option1 == opt1 && r.Option2 == opt2 {
				return Result{Outcome: OutcomeTerminal, Terminal: r.Terminal}
			}
		}
		return Result{Outcome: OutcomeNotFound}
	}
	return Result{Outcome: OutcomeNotFound}
}

func (e *Engine) menu(values []string, build func(string) Path) Result {
	if len(values) == 0 {
		return Result{Outcome: OutcomeDeadEnd}
	}
	choices := make([]Choice, 0, len(values))
	for _, v := range values {
		choices = append(choices, Choice{Label: v, Payload: build(v).Encode()})
	}
	return Result{Outcome: OutcomeMenu, Choices: choices}
}

// distinct collects the values accepted by pick, deduplicated and sorted
// lexicographically so menu order never depends on dataset row order.
func distinct(rows []table.Row, pick func(table.Row) (string, bool)) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if v, ok := pick(r); ok {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
