package fieldmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeDeltasRoundTrip(t *testing.T) {
	raw := []int64{1000, 2000, 3000, 3100, 5000}
	dod, nextTS, nextDelta := TimeDeltas(raw, 0, 0)
	got, gotTS, gotDelta := ReconstructTime(dod, 0, 0)
	assert.Equal(t, raw, got)
	assert.Equal(t, raw[len(raw)-1], nextTS)
	assert.Equal(t, nextTS, gotTS)
	assert.Equal(t, nextDelta, gotDelta)
}

func TestTimeDeltasCarriesAcrossBlocks(t *testing.T) {
	block1 := []int64{1000, 2000, 3000}
	block2 := []int64{4000, 5000}

	dod1, ts1, d1 := TimeDeltas(block1, 0, 0)
	dod2, ts2, d2 := TimeDeltas(block2, ts1, d1)

	got1, ts1r, d1r := ReconstructTime(dod1, 0, 0)
	got2, ts2r, d2r := ReconstructTime(dod2, ts1r, d1r)

	assert.Equal(t, block1, got1)
	assert.Equal(t, block2, got2)
	assert.Equal(t, ts2, ts2r)
	assert.Equal(t, d2, d2r)
}

func TestValueDeltasRoundTrip(t *testing.T) {
	raw := []int64{100, 105, 99, 99, 200}
	delta, nextV := ValueDeltas(raw, 0)
	got, gotV := ReconstructValue(delta, 0)
	assert.Equal(t, raw, got)
	assert.Equal(t, raw[len(raw)-1], nextV)
	assert.Equal(t, nextV, gotV)
}

func TestEmptyBlock(t *testing.T) {
	dod, ts, d := TimeDeltas(nil, 7, 3)
	assert.Empty(t, dod)
	assert.Equal(t, int64(7), ts)
	assert.Equal(t, int64(3), d)
}
