package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGFirstValues(t *testing.T) {
	r := NewRNG(0)

	assert.InDelta(t, 49297.0/233280.0, r.Next(), 1e-15)
	assert.InDelta(t, 165494.0/233280.0, r.Next(), 1e-15)
	assert.InDelta(t, 127551.0/233280.0, r.Next(), 1e-15)
}

func TestRNGNextRange(t *testing.T) {
	r := NewRNG(Seed("2026-02-14"))
	for i := 0; i < 10000; i++ {
		v := r.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRNGNextIntSequence(t *testing.T) {
	r := NewRNG(42)
	got := make([]int, 10)
	for i := range got {
		got[i] = r.NextInt(1, 6)
	}
	assert.Equal(t, []int{6, 5, 6, 5, 4, 5, 4, 1, 5, 5}, got)
}

func TestRNGNextIntInclusive(t *testing.T) {
	r := NewRNG(7)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := r.NextInt(0, 3)
		assert.True(t, v >= 0 && v <= 3, "out of range: %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 4, "both ends of the range must be reachable")
}

func TestRNGSameSeedSameStream(t *testing.T) {
	a := NewRNG(123456)
	b := NewRNG(123456)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	in := []string{"Red", "Blue", "Green"}
	out := Shuffle(NewRNG(Seed("2026-02-17")), in)

	assert.Equal(t, []string{"Red", "Blue", "Green"}, in)
	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []string{"Blue", "Red", "Green"}, out)
}

func TestShuffleEmptyAndSingle(t *testing.T) {
	r := NewRNG(1)
	assert.Empty(t, Shuffle(r, []int{}))
	assert.Equal(t, []int{9}, Shuffle(r, []int{9}))
}
