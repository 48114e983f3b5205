package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyBlockIsZero(t *testing.T) {
	assert.Equal(t, Block{}, Compute(nil))
}

func TestOrderedTrend(t *testing.T) {
	raw := make([]int64, 100)
	for i := range raw {
		raw[i] = int64(i * 10)
	}
	b := Compute(raw)
	assert.Greater(t, b.Monotonicity, 0.9)
	assert.Equal(t, Ordered, Classify(b))
}

func TestConstantBlockIsOrdered(t *testing.T) {
	raw := make([]int64, 50)
	b := Compute(raw)
	assert.Less(t, b.UniqueRatio, 0.05)
	assert.Equal(t, Ordered, Classify(b))
}

func TestChaoticHighEntropy(t *testing.T) {
	// Deterministic pseudo-random-looking alternating sequence with a
	// wide spread and frequent sign flips.
	raw := make([]int64, 100)
	seed := int64(1)
	for i := range raw {
		seed = (seed*6364136223846793005 + 1442695040888963407)
		raw[i] = seed % 1_000_000_000
	}
	b := Compute(raw)
	r := Classify(b)
	assert.True(t, r == Chaotic || r == Mixed, "got %v metrics=%+v", r, b)
}

func TestOutlierRatioFlagsSpikes(t *testing.T) {
	raw := []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 100000}
	b := Compute(raw)
	assert.Greater(t, b.OutlierRatio, 0.0)
}
