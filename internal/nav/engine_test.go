package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatebot/internal/symbol"
	"gatebot/internal/table"
)

func guideRows() []table.Row {
	// Deliberately unsorted row order: menu ordering must come from the
	// string values, never from the dataset.
	return []table.Row{
		{Key: "Tokyo", Option1: "Koto", Option2: "AddrY", Terminal: "102"},
		{Key: "Osaka", Option1: "Naniwa", Option2: "AddrQ", Terminal: "301"},
		{Key: "Tokyo", Option1: "Edogawa", Option2: "AddrZ", Terminal: "201"},
		{Key: "Tokyo", Option1: "Koto", Option2: "AddrX", Terminal: "101"},
		{Key: "", Option1: "Ghost", Option2: "Nowhere", Terminal: "999"},
	}
}

func labels(choices []Choice) []string {
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		out = append(out, c.Label)
	}
	return out
}

func TestRootMenuSortedAndDistinct(t *testing.T) {
	syms := symbol.NewInterner()
	e := NewEngine(syms)

	res := e.Root(guideRows())
	require.Equal(t, OutcomeMenu, res.Outcome)
	assert.Equal(t, []string{"Osaka", "Tokyo"}, labels(res.Choices),
		"empty keys excluded, duplicates collapsed, lexicographic order")
}

func TestRootMenuIndependentOfRowOrder(t *testing.T) {
	syms := symbol.NewInterner()
	e := NewEngine(syms)

	rows := guideRows()
	reversed := make([]table.Row, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	a := e.Root(rows)
	b := e.Root(reversed)
	assert.Equal(t, labels(a.Choices), labels(b.Choices))
}

func TestNavigateTokyoKotoScenario(t *testing.T) {
	syms := symbol.NewInterner()
	e := NewEngine(syms)
	rows := guideRows()

	root := e.Root(rows)
	require.Equal(t, OutcomeMenu, root.Outcome)

	// Select Tokyo.
	tokyo := Path{Level: LevelKey, KeyID: syms.IDOf("Tokyo"), Opt1ID: symbol.None, Opt2ID: symbol.None}
	res := e.Advance(rows, tokyo)
	require.Equal(t, OutcomeMenu, res.Outcome)
	assert.Equal(t, []string{"Edogawa", "Koto"}, labels(res.Choices))

	// Select Koto: options sorted.
	koto := Path{Level: LevelOpt1, KeyID: syms.IDOf("Tokyo"), Opt1ID: syms.IDOf("Koto"), Opt2ID: symbol.None}
	res = e.Advance(rows, koto)
	require.Equal(t, OutcomeMenu, res.Outcome)
	assert.Equal(t, []string{"AddrX", "AddrY"}, labels(res.Choices))

	// Select AddrY: terminal 102.
	addrY := Path{Level: LevelOpt2, KeyID: syms.IDOf("Tokyo"), Opt1ID: syms.IDOf("Koto"), Opt2ID: syms.IDOf("AddrY")}
	res = e.Advance(rows, addrY)
	require.Equal(t, OutcomeTerminal, res.Outcome)
	assert.Equal(t, "102", res.Terminal)
}

func TestDeadEndKeyYieldsNoInformation(t *testing.T) {
	syms := symbol.NewInterner()
	e := NewEngine(syms)

	rows := []table.Row{
		{Key: "Tokyo", Option1: "", Option2: "", Terminal: ""},
	}
	p := Path{Level: LevelKey, KeyID: syms.IDOf("Tokyo"), Opt1ID: symbol.None, Opt2ID: symbol.None}
	res := e.Advance(rows, p)
	assert.Equal(t, OutcomeDeadEnd, res.Outcome)
}

func TestStaleIDFallsBackToNotFound(t *testing.T) {
	syms := symbol.NewInterner()
	e := NewEngine(syms)
	rows := guideRows()

	// Id 9000 never existed in this interner generation.
	stale := Path{Level: LevelKey, KeyID: 9000, Opt1ID: symbol.None, Opt2ID: symbol.None}
	assert.Equal(t, OutcomeNotFound, e.Advance(rows, stale).Outcome)

	// A resolvable id whose value vanished from the dataset after a
	// refresh also degrades to not-found at the terminal step.
	gone := syms.IDOf("Kyoto")
	p := Path{Level: LevelOpt2, KeyID: gone, Opt1ID: syms.IDOf("Koto"), Opt2ID: syms.IDOf("AddrX")}
	assert.Equal(t, OutcomeNotFound, e.Advance(rows, p).Outcome)
}

func TestMenuPayloadsDecodeToNextLevel(t *testing.T) {
	syms := symbol.NewInterner()
	e := NewEngine(syms)
	rows := guideRows()

	root := e.Root(rows)
	require.NotEmpty(t, root.Choices)
	for _, c := range root.Choices {
		p, err := Decode(c.Payload)
		require.NoError(t, err)
		assert.Equal(t, LevelKey, p.Level)
		assert.Equal(t, c.Label, syms.TextOf(p.KeyID))
	}
}
