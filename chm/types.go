// Package chm implements the Compression Health Monitor: a per-stream
// two-state machine that routes each block to the CORE or QUARANTINE path
// based on EMA baselines of compression ratio and entropy, with
// probe-based recovery. Grounded on the teacher's regression package
// (regression/analyzer.go), which splits a stats-driven decision into a
// Model (the persisted baseline) and an Estimator (the per-sample
// decision logic) — mirrored here as Monitor's baseline fields plus its
// Decide/Update methods — and on the "decide, then update" shape of
// blob/numeric_encoder.go's per-block encode loop.
package chm

import "github.com/gicsdb/gics/format"

// State is the CHM's two-value state machine (spec §4.11). There is no
// entry from a terminal state because neither state is terminal.
type State uint8

const (
	Normal State = iota
	QuarantineActive
)

func (s State) String() string {
	if s == QuarantineActive {
		return "QUARANTINE_ACTIVE"
	}
	return "NORMAL"
}

// Route is the per-block routing outcome.
type Route uint8

const (
	Core Route = iota
	Quarantine
)

func (r Route) String() string {
	if r == Quarantine {
		return "QUARANTINE"
	}
	return "CORE"
}

// Reason names why a block was routed to QUARANTINE.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonEntropyGate
	ReasonRatioDrop
	ReasonEntropyBurst
)

func (r Reason) String() string {
	switch r {
	case ReasonEntropyGate:
		return "ENTROPY_GATE"
	case ReasonRatioDrop:
		return "RATIO_DROP"
	case ReasonEntropyBurst:
		return "ENTROPY_BURST"
	default:
		return "NONE"
	}
}

// Decision is the outcome of one call to Monitor.Decide. Probed reports
// whether this call actually evaluated a recovery probe (only true on a
// QUARANTINE_ACTIVE block at a probe-interval boundary); ProbeSucceeded
// reports that probe's outcome. Update reads both to keep its own
// recovery-count and segment-telemetry bookkeeping in lockstep with
// exactly the decision Decide made, rather than recomputing it from a
// possibly different ratio.
type Decision struct {
	Route          Route
	Reason         Reason
	Probed         bool
	ProbeSucceeded bool
}

// AnomalySegment records one contiguous run of QUARANTINE blocks.
type AnomalySegment struct {
	Start          int
	End            int
	Reason         Reason
	MinRatio       float64
	MaxUniqueRatio float64
	ProbeAttempts  int
	ProbeSuccesses int
	open           bool
}

// WorstBlock is one entry in the report's ten-worst-by-ratio list.
type WorstBlock struct {
	BlockIndex int
	Ratio      float64
}

// Report is the CHM's structured telemetry surface (spec §4.6), returned
// by engine.Encoder.Telemetry() per SPEC_FULL §6.1.
type Report struct {
	RunID          string
	FormatVersion  uint8
	Stream         format.StreamID
	AnomalySegments []AnomalySegment
	WorstBlocks    []WorstBlock
}
