package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatebot/internal/symbol"
)

type fakeSource struct {
	rows  []Row
	err   error
	loads int
}

func (f *fakeSource) Load() ([]Row, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Row, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func testRows() []Row {
	return []Row{
		{Key: "Tokyo", Option1: "Koto", Option2: "AddrX", Terminal: "101"},
		{Key: "Tokyo", Option1: "Koto", Option2: "AddrY", Terminal: "102"},
	}
}

func TestCacheLoadInternsNavigableColumns(t *testing.T) {
	syms := symbol.NewInterner()
	c := NewCache(&fakeSource{rows: testRows()}, syms)
	require.NoError(t, c.Load())

	assert.NotEqual(t, symbol.None, syms.IDOf("Tokyo"))
	assert.NotEqual(t, symbol.None, syms.IDOf("Koto"))
	assert.NotEqual(t, symbol.None, syms.IDOf("AddrX"))
	// Terminal values never travel in payloads and stay uninterned.
	assert.Equal(t, 4, syms.Len(), "Tokyo, Koto, AddrX, AddrY")
}

func TestCacheLoadFailsOnEmptyDataset(t *testing.T) {
	c := NewCache(&fakeSource{rows: nil}, symbol.NewInterner())
	assert.ErrorIs(t, c.Load(), ErrFormat)
}

func TestRefreshIfStaleHonorsTTL(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	c := NewCache(src, symbol.NewInterner())

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Load())
	require.Equal(t, 1, src.loads)

	// Fresh: no reload.
	c.RefreshIfStale(5 * time.Minute)
	assert.Equal(t, 1, src.loads)

	// Past the TTL: reload happens.
	now = now.Add(6 * time.Minute)
	c.RefreshIfStale(5 * time.Minute)
	assert.Equal(t, 2, src.loads)
}

func TestRefreshKeepsStaleSnapshotOnFailure(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	c := NewCache(src, symbol.NewInterner())

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Load())
	before := c.Snapshot()

	src.err = errors.New("sheet gone")
	now = now.Add(time.Hour)
	c.RefreshIfStale(5 * time.Minute)

	assert.Equal(t, before, c.Snapshot(), "stale data beats no data")
}

func TestRefreshReplacesSnapshotAtomically(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	c := NewCache(src, symbol.NewInterner())

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Load())
	old := c.Snapshot()

	src.rows = append(testRows(), Row{Key: "Osaka", Option1: "Naniwa", Option2: "AddrQ", Terminal: "301"})
	now = now.Add(time.Hour)
	c.RefreshIfStale(time.Minute)

	assert.Len(t, old, 2, "held snapshots are unaffected by refresh")
	assert.Len(t, c.Snapshot(), 3)
}
