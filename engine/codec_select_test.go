package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerizeBlockAcceptsExactIntegers(t *testing.T) {
	ints, ok := integerizeBlock([]float64{1, 2, -3, 0, 1000000})
	assert.True(t, ok)
	assert.Equal(t, []int64{1, 2, -3, 0, 1000000}, ints)
}

func TestIntegerizeBlockRejectsNaN(t *testing.T) {
	_, ok := integerizeBlock([]float64{1, math.NaN(), 3})
	assert.False(t, ok)
}

func TestIntegerizeBlockRejectsInfinity(t *testing.T) {
	_, ok := integerizeBlock([]float64{1, math.Inf(1), 3})
	assert.False(t, ok)
}

func TestIntegerizeBlockRejectsNegativeZero(t *testing.T) {
	_, ok := integerizeBlock([]float64{1, math.Copysign(0, -1), 3})
	assert.False(t, ok)
}

func TestIntegerizeBlockRejectsFractional(t *testing.T) {
	_, ok := integerizeBlock([]float64{1, 2.5, 3})
	assert.False(t, ok)
}

func TestIntegerizeBlockAcceptsPositiveZero(t *testing.T) {
	ints, ok := integerizeBlock([]float64{0, 1, 2})
	assert.True(t, ok)
	assert.Equal(t, []int64{0, 1, 2}, ints)
}
