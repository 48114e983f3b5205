package codec

import "github.com/gicsdb/gics/bitutil"

// Dictionary is the subset of blockctx's ring-buffer value dictionary that
// DICT_VARINT needs. Kept as a local interface (rather than importing
// blockctx directly) so codec has no dependency on the block-context
// package; blockctx.Context satisfies this structurally.
type Dictionary interface {
	Lookup(v int64) (int, bool)
	Insert(v int64)
	At(idx int) (int64, bool)
}

// EncodeDict implements DICT_VARINT: each element is tagged by the LSB of
// the varint payload — 1 means "dictionary index follows", 0 means "a
// zig-zagged literal follows, then insert it into the dictionary".
func EncodeDict(xs []int64, dict Dictionary) []byte {
	out := make([]byte, 0, len(xs)*2)
	for _, v := range xs {
		if idx, ok := dict.Lookup(v); ok {
			out = bitutil.AppendUvarint(out, uint64(idx)<<1|1)
			continue
		}
		out = bitutil.AppendUvarint(out, bitutil.Zigzag(v)<<1)
		dict.Insert(v)
	}
	return out
}

// DecodeDict inverts EncodeDict against a dictionary primed identically to
// the one used at encode time (same prior blocks, same insertion order).
func DecodeDict(b []byte, n int, dict Dictionary) ([]int64, error) {
	out := make([]int64, 0, n)
	off := 0
	for range n {
		tagged, used, err := bitutil.GetUvarint(b[off:])
		if err != nil {
			return nil, err
		}
		off += used

		if tagged&1 == 1 {
			idx := int(tagged >> 1)
			v, ok := dict.At(idx)
			if !ok {
				return nil, errDictIndexOutOfRange
			}
			out = append(out, v)
			continue
		}
		v := bitutil.Unzigzag(tagged >> 1)
		out = append(out, v)
		dict.Insert(v)
	}
	return out, nil
}

const errDictIndexOutOfRange = codecError("dict_varint: dictionary index out of range")
