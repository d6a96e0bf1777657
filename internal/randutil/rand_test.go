package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for range 100 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestDeriveStreamsDiffer(t *testing.T) {
	t.Parallel()

	first := Derive(7, 0).Uint64()
	second := Derive(7, 1).Uint64()
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, Derive(7, 0).Uint64())
}
