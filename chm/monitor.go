package chm

import (
	"math"
	"sort"

	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/metrics"
)

const (
	emaAlpha     = 0.1
	triggerK     = 3.0
	recoveryK    = 10.0
	defaultM     = 3
	worstBlocks  = 10
	minSigma     = 0.1
	entropyCap   = 0.8
)

// Monitor is the per-stream CHM instance. Nothing here is package-level:
// an Encoder owns one Monitor per stream, never a shared singleton
// (spec §9).
type Monitor struct {
	stream        format.StreamID
	probeInterval int
	recoveryCount int
	state         State

	baselineRatio   float64
	baselineDev     float64
	baselineEntropy float64
	frozenRatio     float64

	stats    stats
	segments []AnomalySegment
	worst    []WorstBlock
}

type stats struct {
	coreBlocks, quarBlocks           int
	coreInputBytes, coreOutputBytes  int64
	quarInputBytes, quarOutputBytes  int64
}

// New returns a fresh Monitor for one stream. probeInterval is P from
// spec §4.6; pass 0 to use the default of 4.
func New(stream format.StreamID, probeInterval int) *Monitor {
	return NewWithBaselines(stream, probeInterval, 2.0, 0.5, 0.5)
}

// NewWithBaselines returns a Monitor for one stream seeded with explicit
// baselines, the continuity mechanism spec §9 mandates in place of a
// shared-singleton CHM: a caller that wants a new encoder run to behave
// as a continuation of a previous one reads the prior Monitor's
// Baselines() and passes them back in here.
func NewWithBaselines(stream format.StreamID, probeInterval int, ratio, dev, entropy float64) *Monitor {
	if probeInterval <= 0 {
		probeInterval = 4
	}
	return &Monitor{
		stream:          stream,
		probeInterval:   probeInterval,
		baselineRatio:   ratio,
		baselineDev:     dev,
		baselineEntropy: entropy,
	}
}

// Baselines returns the monitor's current EMA baselines, for carrying
// into a subsequent run's NewWithBaselines.
func (mon *Monitor) Baselines() (ratio, dev, entropy float64) {
	return mon.baselineRatio, mon.baselineDev, mon.baselineEntropy
}

// entropy is the uniqueness-based proxy the spec's "entropy" term refers
// to — the average of the raw and delta-stream unique ratios. This
// resolves an open question: the spec's decide_route takes an "entropy"
// signal without defining its formula; block metrics only expose unique
// ratios, which are the natural entropy proxy already computed per block.
func entropy(m metrics.Block) float64 {
	return (m.UniqueRatio + m.UniqueDeltaRatio) / 2
}

// Decide implements spec §4.6's decide_route. It never mutates baselines
// or segment bookkeeping — that happens in Update, the single writer of
// state.
func (mon *Monitor) Decide(m metrics.Block, probeRatio float64, blockIndex int) Decision {
	if m.UniqueRatio > 0.85 && m.UniqueDeltaRatio > 0.85 {
		return Decision{Route: Quarantine, Reason: ReasonEntropyGate}
	}

	ent := entropy(m)

	if mon.state == Normal {
		sigma := mon.effectiveSigma()
		if probeRatio < mon.baselineRatio-triggerK*sigma {
			return Decision{Route: Quarantine, Reason: ReasonRatioDrop}
		}
		if ent > 1.5*mon.baselineEntropy && ent > 0.5 && probeRatio < mon.baselineRatio {
			return Decision{Route: Quarantine, Reason: ReasonEntropyBurst}
		}
		return Decision{Route: Core}
	}

	// QuarantineActive: only probe at indices divisible by P.
	if blockIndex%mon.probeInterval != 0 {
		return Decision{Route: Quarantine}
	}

	sigma := mon.effectiveSigma()
	succeeded := probeRatio >= mon.frozenRatio-recoveryK*sigma
	if succeeded && mon.recoveryCount+1 >= defaultM {
		return Decision{Route: Core, Probed: true, ProbeSucceeded: true}
	}
	return Decision{Route: Quarantine, Probed: true, ProbeSucceeded: succeeded}
}

// effectiveSigma applies spec §4.6's floor (max(σ,0.1)) and cap
// (3σ' ≤ 0.9·baseline, i.e. σ' ≤ 0.3·baseline).
func (mon *Monitor) effectiveSigma() float64 {
	sigma := math.Max(mon.baselineDev, minSigma)
	sigmaCap := 0.3 * mon.baselineRatio
	return math.Min(sigma, sigmaCap)
}

// Update is the single writer of Monitor state: it records stats, manages
// the anomaly-segment list, computes this block's manifest flags, and
// trains baselines only when appropriate (spec §4.6).
func (mon *Monitor) Update(d Decision, m metrics.Block, blockIndex int, ratio float64, inputBytes, outputBytes int) format.BlockFlag {
	wasQuarantine := mon.state == QuarantineActive
	flags := format.FlagNone

	switch {
	case d.Route == Quarantine && !wasQuarantine:
		mon.state = QuarantineActive
		mon.frozenRatio = mon.baselineRatio
		mon.recoveryCount = 0
		mon.segments = append(mon.segments, AnomalySegment{
			Start: blockIndex, Reason: d.Reason,
			MinRatio: ratio, MaxUniqueRatio: m.UniqueRatio, open: true,
		})
		flags |= format.FlagAnomalyStart | format.FlagHealthQuar

	case d.Route == Quarantine && wasQuarantine:
		if d.Probed {
			if len(mon.segments) > 0 {
				mon.segments[len(mon.segments)-1].ProbeAttempts++
			}
			if d.ProbeSucceeded {
				if len(mon.segments) > 0 {
					mon.segments[len(mon.segments)-1].ProbeSuccesses++
				}
				mon.recoveryCount++
			} else {
				mon.recoveryCount = 0
			}
		}
		mon.updateOpenSegment(ratio, m.UniqueRatio)
		flags |= format.FlagAnomalyMid | format.FlagHealthQuar

	case d.Route == Core && wasQuarantine:
		if d.Probed {
			if len(mon.segments) > 0 {
				mon.segments[len(mon.segments)-1].ProbeAttempts++
				if d.ProbeSucceeded {
					mon.segments[len(mon.segments)-1].ProbeSuccesses++
				}
			}
		}
		mon.updateOpenSegment(ratio, m.UniqueRatio)
		mon.closeOpenSegment(blockIndex)
		mon.state = Normal
		mon.recoveryCount = 0
		flags |= format.FlagAnomalyEnd

	default: // Core, already Normal
		sigma := mon.effectiveSigma()
		if ratio < mon.baselineRatio-2*sigma {
			flags |= format.FlagHealthWarn
		}
	}

	if d.Route == Quarantine {
		mon.stats.quarBlocks++
		mon.stats.quarInputBytes += int64(inputBytes)
		mon.stats.quarOutputBytes += int64(outputBytes)
	} else {
		mon.stats.coreBlocks++
		mon.stats.coreInputBytes += int64(inputBytes)
		mon.stats.coreOutputBytes += int64(outputBytes)
	}

	if d.Route == Core && !flags.Has(format.FlagAnomalyEnd) && entropy(m) <= entropyCap {
		mon.train(ratio, entropy(m))
	}

	mon.recordWorst(blockIndex, ratio)
	return flags
}

func (mon *Monitor) updateOpenSegment(ratio, uniqueRatio float64) {
	if len(mon.segments) == 0 {
		return
	}
	seg := &mon.segments[len(mon.segments)-1]
	if ratio < seg.MinRatio {
		seg.MinRatio = ratio
	}
	if uniqueRatio > seg.MaxUniqueRatio {
		seg.MaxUniqueRatio = uniqueRatio
	}
}

func (mon *Monitor) closeOpenSegment(blockIndex int) {
	if len(mon.segments) == 0 {
		return
	}
	seg := &mon.segments[len(mon.segments)-1]
	if seg.open {
		seg.End = blockIndex
		seg.open = false
	}
}

// train applies the EMA update (α=0.1) to all three baselines. Deviation
// is tracked as an EMA of the absolute deviation from the ratio baseline,
// serving as the CHM's running sigma estimate.
func (mon *Monitor) train(ratio, ent float64) {
	dev := math.Abs(ratio - mon.baselineRatio)
	mon.baselineDev = emaAlpha*dev + (1-emaAlpha)*mon.baselineDev
	mon.baselineRatio = emaAlpha*ratio + (1-emaAlpha)*mon.baselineRatio
	mon.baselineEntropy = emaAlpha*ent + (1-emaAlpha)*mon.baselineEntropy
}

func (mon *Monitor) recordWorst(blockIndex int, ratio float64) {
	mon.worst = append(mon.worst, WorstBlock{BlockIndex: blockIndex, Ratio: ratio})
	sort.Slice(mon.worst, func(i, j int) bool { return mon.worst[i].Ratio < mon.worst[j].Ratio })
	if len(mon.worst) > worstBlocks {
		mon.worst = mon.worst[:worstBlocks]
	}
}

// State reports the monitor's current state, for tests and diagnostics.
func (mon *Monitor) State() State { return mon.state }

// Report assembles the structured telemetry surface for this stream.
func (mon *Monitor) Report(runID string, formatVersion uint8) Report {
	segs := make([]AnomalySegment, len(mon.segments))
	copy(segs, mon.segments)
	worst := make([]WorstBlock, len(mon.worst))
	copy(worst, mon.worst)
	return Report{
		RunID:           runID,
		FormatVersion:   formatVersion,
		Stream:          mon.stream,
		AnomalySegments: segs,
		WorstBlocks:     worst,
	}
}
