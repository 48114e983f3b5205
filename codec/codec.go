// Package codec implements the closed family of inner codecs: stateless
// byte-level transforms over an already-prepared integer sequence (raw
// values, first-differences, or delta-of-deltas — the caller decides which
// by choosing which codec to invoke). Grounded on the teacher's
// TimestampDeltaEncoder/ColumnarEncoder shape (encoding/columnar.go,
// encoding/ts_delta.go): each variant is a pure encode/decode pair rather
// than a class hierarchy, matching the "closed tagged variant" design
// mandated by spec §9.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/gicsdb/gics/bitutil"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/format"
)

// Encode applies the given inner codec to xs, returning the block payload.
// DICT_VARINT is not handled here — it requires a Dictionary and is reached
// through EncodeDict/DecodeDict instead.
func Encode(c format.InnerCodec, xs []int64) ([]byte, error) {
	switch c {
	case format.NoneCodec:
		return nil, nil
	case format.VarintDelta, format.DoDVarint:
		return bitutil.EncodeVarint(xs), nil
	case format.BitpackDelta:
		return bitutil.EncodeBitpack(xs), nil
	case format.RLEZigzag, format.RLEDoD:
		return encodeRLE(xs), nil
	case format.Fixed64LE:
		return encodeFixed64(xs), nil
	default:
		return nil, errs.Format("codec.Encode", errUnknownCodec)
	}
}

// Decode inverts Encode for the n elements that were packed into payload.
func Decode(c format.InnerCodec, payload []byte, n int) ([]int64, error) {
	switch c {
	case format.NoneCodec:
		return make([]int64, n), nil
	case format.VarintDelta, format.DoDVarint:
		xs, _, err := bitutil.DecodeVarint(payload, n)
		return xs, err
	case format.BitpackDelta:
		return bitutil.DecodeBitpack(payload, n)
	case format.RLEZigzag, format.RLEDoD:
		return decodeRLE(payload, n)
	case format.Fixed64LE:
		return decodeFixed64(payload, n)
	default:
		return nil, errs.Format("codec.Decode", errUnknownCodec)
	}
}

func encodeFixed64(xs []int64) []byte {
	out := make([]byte, len(xs)*8)
	for i, v := range xs {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
	}
	return out
}

func decodeFixed64(b []byte, n int) ([]int64, error) {
	if len(b) < n*8 {
		return nil, errs.Incomplete("codec.decodeFixed64", errTruncatedBlock)
	}
	out := make([]int64, n)
	for i := range n {
		out[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out, nil
}

// Float64ToBits/BitsToFloat64 let callers route non-coercible floating
// point fields through FIXED64_LE by reinterpreting the IEEE-754 bit
// pattern as an int64, preserving NaN/Inf/-0 exactly (spec §8 property 1).
func Float64ToBits(f float64) int64  { return int64(math.Float64bits(f)) }
func BitsToFloat64(v int64) float64  { return math.Float64frombits(uint64(v)) }

type codecError string

func (e codecError) Error() string { return string(e) }

const (
	errUnknownCodec   = codecError("unknown inner codec id")
	errTruncatedBlock = codecError("truncated block payload")
)
