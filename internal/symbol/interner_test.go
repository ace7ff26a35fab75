package symbol

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternerBijection(t *testing.T) {
	in := NewInterner()

	values := []string{"Tokyo", "Koto", "AddrX", "AddrY", "Edogawa"}
	for _, v := range values {
		id := in.IDOf(v)
		require.GreaterOrEqual(t, id, 0)
		assert.Equal(t, v, in.TextOf(id))
	}
	assert.Equal(t, len(values), in.Len())
}

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()

	first := in.IDOf("Tokyo")
	in.IDOf("Koto")
	assert.Equal(t, first, in.IDOf("Tokyo"), "repeated calls must return the same id")
}

func TestInternerEmptyString(t *testing.T) {
	in := NewInterner()

	assert.Equal(t, None, in.IDOf(""))
	assert.Equal(t, 0, in.Len(), "empty string must not be interned")
	assert.Equal(t, "", in.TextOf(None))
}

func TestInternerUnknownID(t *testing.T) {
	in := NewInterner()
	in.IDOf("Tokyo")

	assert.Equal(t, "", in.TextOf(42), "unknown ids resolve to empty, never error")
	assert.Equal(t, "", in.TextOf(-7))
}

func TestInternerConcurrentFirstEncounter(t *testing.T) {
	in := NewInterner()

	const goroutines = 32
	ids := make([]int, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			ids[i] = in.IDOf("Shinjuku")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		require.Equal(t, ids[0], ids[i], "concurrent IDOf calls must agree on one id")
	}
	assert.Equal(t, 1, in.Len())
}

func TestInternerIDsNeverReused(t *testing.T) {
	in := NewInterner()

	seen := make(map[int]string)
	for i := 0; i < 100; i++ {
		v := fmt.Sprintf("value-%d", i)
		id := in.IDOf(v)
		prev, dup := seen[id]
		require.False(t, dup, "id %d reused for %q and %q", id, prev, v)
		seen[id] = v
	}
}
