package codec

import "github.com/gicsdb/gics/bitutil"

// encodeRLE run-length-encodes xs as a sequence of (count, value) pairs,
// both varint-packed (value zig-zagged). Shared by RLE_ZIGZAG (over raw-ish
// data) and RLE_DOD (over a delta-of-delta stream) — the two differ only in
// which integer sequence the caller feeds in.
func encodeRLE(xs []int64) []byte {
	out := make([]byte, 0, len(xs))
	i := 0
	for i < len(xs) {
		v := xs[i]
		run := 1
		for i+run < len(xs) && xs[i+run] == v {
			run++
		}
		out = bitutil.AppendUvarint(out, uint64(run))
		out = bitutil.AppendVarint(out, v)
		i += run
	}
	return out
}

func decodeRLE(b []byte, n int) ([]int64, error) {
	out := make([]int64, 0, n)
	off := 0
	for len(out) < n {
		count, used, err := bitutil.GetUvarint(b[off:])
		if err != nil {
			return nil, err
		}
		off += used
		v, used, err := bitutil.GetVarint(b[off:])
		if err != nil {
			return nil, err
		}
		off += used
		for range count {
			out = append(out, v)
		}
	}
	return out, nil
}
