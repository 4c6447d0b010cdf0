package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestFromFlag(t *testing.T) {
	t.Parallel()

	seed := int64(7)
	rng, used := FromFlag(&seed)
	assert.Equal(t, seed, used)
	assert.Equal(t, New(7).Uint64(), rng.Uint64())

	_, used = FromFlag(nil)
	assert.NotZero(t, used)
}

func TestChildDiffersFromParent(t *testing.T) {
	t.Parallel()

	parent := New(1)
	c1 := Child(parent)
	c2 := Child(parent)
	assert.NotEqual(t, c1.Uint64(), c2.Uint64())
}
