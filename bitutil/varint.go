// Package bitutil implements the low-level byte arithmetic shared by every
// inner codec: zig-zag signed/unsigned mapping, LEB128 varint encode/decode,
// minimal-width bit packing, and the CRC32/SHA-256 helpers used by the
// segment/section/file integrity hashes. Every routine here is total:
// decoders reject truncated input with errs.ErrIncompleteData rather than
// panicking or reading out of bounds, grounded on the teacher's own
// zigzag/varint arithmetic in encoding/ts_delta.go.
package bitutil

import (
	"encoding/binary"

	"github.com/gicsdb/gics/errs"
)

// MaxVarintLen is the widest a zig-zagged int64 can spread over LEB128.
const MaxVarintLen = binary.MaxVarintLen64

// Zigzag maps a signed 64-bit integer to an unsigned one so that small
// magnitude values (positive or negative) both encode to few varint bytes.
func Zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// Unzigzag inverts Zigzag.
func Unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AppendVarint zig-zag + LEB128 encodes v and appends it to dst.
func AppendVarint(dst []byte, v int64) []byte {
	var tmp [MaxVarintLen]byte
	n := binary.PutUvarint(tmp[:], Zigzag(v))
	return append(dst, tmp[:n]...)
}

// AppendUvarint LEB128-encodes an already-unsigned value (used for counts,
// lengths, and other fields that are never negative) and appends it to dst.
func AppendUvarint(dst []byte, v uint64) []byte {
	var tmp [MaxVarintLen]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(dst, tmp[:n]...)
}

// EncodeVarint zig-zag + LEB128 encodes every element of xs, concatenated.
func EncodeVarint(xs []int64) []byte {
	out := make([]byte, 0, len(xs)*2)
	for _, v := range xs {
		out = AppendVarint(out, v)
	}
	return out
}

// GetVarint reads one zig-zagged varint from b, returning the decoded value
// and the number of bytes consumed. decode_varint loops are bounded to
// MaxVarintLen bytes (spec §8 property 7): a varint that doesn't terminate
// within that span is rejected as incomplete rather than looping forever.
func GetVarint(b []byte) (int64, int, error) {
	if len(b) > MaxVarintLen {
		b = b[:MaxVarintLen]
	}
	u, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, 0, errs.Incomplete("bitutil.GetVarint", errTruncatedVarint)
	}
	return Unzigzag(u), n, nil
}

// GetUvarint reads one unsigned LEB128 varint from b.
func GetUvarint(b []byte) (uint64, int, error) {
	if len(b) > MaxVarintLen {
		b = b[:MaxVarintLen]
	}
	u, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, 0, errs.Incomplete("bitutil.GetUvarint", errTruncatedVarint)
	}
	return u, n, nil
}

// DecodeVarint decodes n zig-zagged varints from b and returns them along
// with the total bytes consumed.
func DecodeVarint(b []byte, n int) ([]int64, int, error) {
	out := make([]int64, 0, n)
	off := 0
	for range n {
		v, used, err := GetVarint(b[off:])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
		off += used
	}
	return out, off, nil
}

var errTruncatedVarint = truncatedVarintError{}

type truncatedVarintError struct{}

func (truncatedVarintError) Error() string { return "truncated varint" }
