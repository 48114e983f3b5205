// Package fieldmath derives delta and delta-of-delta integer streams from
// raw time/value sequences and reconstructs the raw sequences from them,
// carrying the running state (last value, last delta) across block
// boundaries. Grounded on the teacher's TimestampDeltaEncoder arithmetic
// (encoding/ts_delta.go), split out here as pure functions independent of
// any encoder buffer so codec selection can operate on the derived streams
// directly.
package fieldmath

// TimeDeltas computes the delta-of-delta stream for raw, continuing from
// (lastTS, lastDelta) carried over from the previous block. It returns the
// DoD values plus the new (lastTS, lastDelta) to carry forward.
func TimeDeltas(raw []int64, lastTS, lastDelta int64) (dod []int64, nextTS, nextDelta int64) {
	dod = make([]int64, len(raw))
	ts, delta := lastTS, lastDelta
	for i, v := range raw {
		d := v - ts
		dod[i] = d - delta
		delta = d
		ts = v
	}
	return dod, ts, delta
}

// ReconstructTime inverts TimeDeltas.
func ReconstructTime(dod []int64, lastTS, lastDelta int64) (raw []int64, nextTS, nextDelta int64) {
	raw = make([]int64, len(dod))
	ts, delta := lastTS, lastDelta
	for i, d := range dod {
		delta += d
		ts += delta
		raw[i] = ts
	}
	return raw, ts, delta
}

// ValueDeltas computes first differences for raw, continuing from lastV
// carried over from the previous block.
func ValueDeltas(raw []int64, lastV int64) (delta []int64, nextV int64) {
	delta = make([]int64, len(raw))
	v := lastV
	for i, x := range raw {
		delta[i] = x - v
		v = x
	}
	return delta, v
}

// ReconstructValue inverts ValueDeltas.
func ReconstructValue(delta []int64, lastV int64) (raw []int64, nextV int64) {
	raw = make([]int64, len(delta))
	v := lastV
	for i, d := range delta {
		v += d
		raw[i] = v
	}
	return raw, v
}
