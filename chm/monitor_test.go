package chm

import (
	"testing"

	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordinaryMetrics() metrics.Block {
	return metrics.Block{UniqueRatio: 0.3, UniqueDeltaRatio: 0.3}
}

func TestStartsNormal(t *testing.T) {
	mon := New(format.StreamValue, 4)
	assert.Equal(t, Normal, mon.State())
}

func TestEntropyGateForcesQuarantine(t *testing.T) {
	mon := New(format.StreamValue, 4)
	m := metrics.Block{UniqueRatio: 0.9, UniqueDeltaRatio: 0.9}
	d := mon.Decide(m, 2.0, 0)
	assert.Equal(t, Quarantine, d.Route)
	assert.Equal(t, ReasonEntropyGate, d.Reason)
}

func TestRatioDropTriggersQuarantine(t *testing.T) {
	mon := New(format.StreamValue, 4)
	// Train baseline up with consistent good ratios first.
	for i := range 20 {
		m := ordinaryMetrics()
		d := mon.Decide(m, 2.0, i)
		require.Equal(t, Core, d.Route)
		mon.Update(d, m, i, 2.0, 1000, 500)
	}
	// Now a big ratio collapse should trigger QUARANTINE.
	m := ordinaryMetrics()
	d := mon.Decide(m, 0.1, 20)
	assert.Equal(t, Quarantine, d.Route)
	assert.Equal(t, ReasonRatioDrop, d.Reason)
}

func TestRecoveryRequiresMConsecutiveProbes(t *testing.T) {
	mon := New(format.StreamValue, 4)
	m := ordinaryMetrics()

	for i := range 12 {
		d := mon.Decide(m, 2.0, i)
		mon.Update(d, m, i, 2.0, 1000, 500)
	}

	// Force into quarantine via a ratio collapse.
	d := mon.Decide(m, 0.1, 12)
	require.Equal(t, Quarantine, d.Route)
	mon.Update(d, m, 12, 0.1, 1000, 5000)
	assert.Equal(t, QuarantineActive, mon.State())

	frozen := mon.frozenRatio
	blockIdx := 12
	recovered := false
	for probes := range 10 {
		blockIdx += mon.probeInterval
		d = mon.Decide(m, frozen, blockIdx)
		mon.Update(d, m, blockIdx, frozen, 1000, 500)
		if d.Route == Core {
			recovered = true
			assert.GreaterOrEqual(t, probes, 2, "must take at least M=3 successful probes to recover")
			break
		}
	}
	require.True(t, recovered)
	assert.Equal(t, Normal, mon.State())
}

func TestOnlyProbesAtIntervalBoundaries(t *testing.T) {
	mon := New(format.StreamValue, 4)
	m := ordinaryMetrics()
	d := mon.Decide(m, 0.1, 0)
	mon.Update(d, m, 0, 0.1, 1000, 5000)
	require.Equal(t, QuarantineActive, mon.State())

	// Block index 1 is not divisible by P=4, so no probe runs; must stay
	// in quarantine regardless of how good the ratio looks.
	d = mon.Decide(m, 100.0, 1)
	assert.Equal(t, Quarantine, d.Route)
}

func TestQuarantineDoesNotTrainBaseline(t *testing.T) {
	mon := New(format.StreamValue, 4)
	before := mon.baselineRatio
	m := ordinaryMetrics()
	d := Decision{Route: Quarantine, Reason: ReasonRatioDrop}
	mon.Update(d, m, 0, 0.01, 1000, 5000)
	assert.Equal(t, before, mon.baselineRatio, "quarantine blocks must never train the CORE baseline")
}

func TestReportIncludesWorstBlocks(t *testing.T) {
	mon := New(format.StreamValue, 4)
	for i := range 15 {
		m := ordinaryMetrics()
		ratio := float64(i)
		d := mon.Decide(m, ratio, i)
		mon.Update(d, m, i, ratio, 1000, 500)
	}
	report := mon.Report("run-1", 1)
	assert.LessOrEqual(t, len(report.WorstBlocks), 10)
	if len(report.WorstBlocks) > 1 {
		assert.LessOrEqual(t, report.WorstBlocks[0].Ratio, report.WorstBlocks[1].Ratio)
	}
}
