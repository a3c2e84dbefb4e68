package gameid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardroomhq/cardroom/internal/randutil"
)

func TestGenerateShape(t *testing.T) {
	id := Generate()
	require.Len(t, id, 26)
	require.NoError(t, Validate(id))

	for _, c := range id {
		require.True(t, strings.ContainsRune(alphabet, c), "unexpected character %c", c)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Generate()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateSortsByTime(t *testing.T) {
	// UUIDv7 leads with a millisecond timestamp, so ids from the same
	// generator are lexicographically non-decreasing over time.
	a := Generate()
	b := Generate()
	require.LessOrEqual(t, a[:9], b[:9], "timestamp prefix must not regress")
}

func TestGeneratorWithInjectedSource(t *testing.T) {
	g := NewGenerator(randutil.New(7))
	id := g.Generate()
	require.NoError(t, Validate(id))
}

func TestValidate(t *testing.T) {
	require.Error(t, Validate("short"))
	require.Error(t, Validate(strings.Repeat("z", 26)), "first char must be 0-7")
	require.Error(t, Validate("0123456789abcdefghjkmnpqsu"), "u is not in the alphabet")
	require.NoError(t, Validate("0123456789abcdefghjkmnpqst"))
}
