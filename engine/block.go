package engine

import (
	"github.com/gicsdb/gics/chm"
	"github.com/gicsdb/gics/codec"
	"github.com/gicsdb/gics/fieldmath"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/metrics"
	"github.com/gicsdb/gics/section"
)

// commitIntBlock runs one block of an integer-domain stream (TIME,
// SNAPSHOT_LEN, ITEM_ID, or an already-integerized VALUE/QUANTITY/extra
// field) through the full spec §4.7 per-block pipeline: snapshot
// context, derive the delta/DoD stream, compute metrics, select and
// encode a candidate codec, ask the CHM to route it, and commit or roll
// back the stream's persistent context accordingly.
func (st *streamState) commitIntBlock(raw []int64) (section.ManifestEntry, []byte) {
	snap := st.ctx.Snapshot()

	var derived []int64
	var nextV, nextDelta int64
	if st.isTime {
		lastTS, _ := st.ctx.LastValue()
		lastDelta, _ := st.ctx.LastDelta()
		derived, nextV, nextDelta = fieldmath.TimeDeltas(raw, lastTS, lastDelta)
	} else {
		lastV, _ := st.ctx.LastValue()
		derived, nextV = fieldmath.ValueDeltas(raw, lastV)
	}

	m := metrics.Compute(raw)
	rawBytes := len(raw) * 8

	candidate, useDict := selectCandidate(m, st.isTime)
	payload, encErr := encodeCandidate(candidate, useDict, raw, derived, st.ctx)

	var d chm.Decision
	var candidateRatio float64
	if encErr != nil {
		// Candidate-codec errors fall straight through to the safe
		// codec and are marked QUARANTINE without consulting the CHM
		// (spec §4.12).
		d = chm.Decision{Route: chm.Quarantine}
	} else {
		candidateRatio = probeRatio(rawBytes, len(payload))
		d = st.mon.Decide(m, candidateRatio, st.blockIndex)
	}

	if d.Route == chm.Quarantine {
		st.ctx.Restore(snap)
		candidate = safeCodec(st.isTime)
		payload, _ = codec.Encode(candidate, derived)
		if encErr != nil {
			// No candidate encode to probe a ratio from; fall back to
			// the safe re-encode's own ratio.
			candidateRatio = probeRatio(rawBytes, len(payload))
		}
	} else {
		st.ctx.SetLastValue(nextV)
		if st.isTime {
			st.ctx.SetLastDelta(nextDelta)
		}
	}

	// Update gets the same ratio Decide just evaluated, not one recomputed
	// from the safe-codec re-encode's payload — Decide's recovery check and
	// Update's recoveryCount bookkeeping must stay in lockstep.
	flags := st.mon.Update(d, m, st.blockIndex, candidateRatio, rawBytes, len(payload))
	st.annotations = append(st.annotations, BlockAnnotation{
		Stream: st.id, BlockIndex: st.blockIndex, Regime: metrics.Classify(m), Flags: flags,
	})
	st.blockIndex++

	return section.ManifestEntry{
		Codec: candidate, NItems: uint32(len(raw)), PayloadLen: uint32(len(payload)), Flags: flags,
	}, payload
}

// commitFloatBlock handles one block of a VALUE/QUANTITY/extra field.
// Blocks that losslessly integerize run through the same pipeline as
// any other integer stream; blocks that don't (carrying NaN, ±Inf, -0,
// or a fractional part) fall back whole-block to FIXED64_LE, which stores each element's
// raw IEEE-754 bit pattern and is exempt from CHM routing — there is no
// safe re-encode path for non-integerizable data to roll back to, so
// routing it through QUARANTINE would have no effect beyond telemetry
// noise (see DESIGN.md).
func (st *streamState) commitFloatBlock(raw []float64) (section.ManifestEntry, []byte) {
	if ints, ok := integerizeBlock(raw); ok {
		return st.commitIntBlock(ints)
	}

	bits := make([]int64, len(raw))
	for i, v := range raw {
		bits[i] = codec.Float64ToBits(v)
	}
	payload, _ := codec.Encode(format.Fixed64LE, bits)
	st.annotations = append(st.annotations, BlockAnnotation{
		Stream: st.id, BlockIndex: st.blockIndex, Regime: metrics.Mixed, Flags: format.FlagNone,
	})
	st.blockIndex++
	return section.ManifestEntry{
		Codec: format.Fixed64LE, NItems: uint32(len(bits)), PayloadLen: uint32(len(payload)), Flags: format.FlagNone,
	}, payload
}
