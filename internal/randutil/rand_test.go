package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestDeriveSeparatesStreams(t *testing.T) {
	assert.Equal(t, Derive(1, 3), Derive(1, 3))
	assert.NotEqual(t, Derive(1, 3), Derive(1, 4))

	s := int64(99)
	assert.Equal(t, int64(99), Seed(&s))
}
