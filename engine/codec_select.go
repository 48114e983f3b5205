package engine

import (
	"math"

	"github.com/gicsdb/gics/codec"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/metrics"
)

// selectCandidate implements the encoder's candidate-codec priority list
// (spec §4.7 step 4): DICT_VARINT for a non-time stream with a low
// unique ratio, then RLE_DOD, then BITPACK_DELTA, falling through to the
// stream's default safe codec. DICT_VARINT self-seeds within a block
// (each literal not yet in the dictionary is inserted as it's written),
// so the stream's dictionary doesn't need to be pre-populated for the
// codec to run — requiring ctx.Len() > 0 up front would make it
// unreachable on a fresh stream and never get the chance to seed itself.
func selectCandidate(m metrics.Block, isTime bool) (codecID format.InnerCodec, useDict bool) {
	if !isTime && m.UniqueRatio < 0.5 {
		return format.DictVarint, true
	}
	if m.ZeroDoDRatio > 0.9 {
		return format.RLEDoD, false
	}
	if m.P90AbsDelta < 127 {
		return format.BitpackDelta, false
	}
	return safeCodec(isTime), false
}

// encodeCandidate runs the chosen candidate over raw (for DICT_VARINT,
// which indexes literal values directly) or derived (every other
// candidate, which operates on the delta/DoD stream).
func encodeCandidate(c format.InnerCodec, useDict bool, raw, derived []int64, dict codec.Dictionary) ([]byte, error) {
	if useDict {
		return codec.EncodeDict(raw, dict), nil
	}
	return codec.Encode(c, derived)
}

// integerizeBlock reports whether every value in raw can be losslessly
// represented as an int64, and if so returns the converted sequence.
// NaN, ±Inf, and -0 are always rejected so the delta/DoD integer path
// never has to carry their meaning through subtraction (spec §8 property
// 1 requires is_nan/is_inf/sign-of-zero to survive exactly; FIXED64_LE
// stores their IEEE-754 bit pattern directly instead).
func integerizeBlock(raw []float64) ([]int64, bool) {
	out := make([]int64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		if v == 0 && math.Signbit(v) {
			return nil, false
		}
		iv := int64(v)
		if float64(iv) != v {
			return nil, false
		}
		out[i] = iv
	}
	return out, true
}
