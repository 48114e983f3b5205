package bitutil

import "github.com/gicsdb/gics/errs"

// EncodeBitpack zig-zags every element of xs, picks the minimum bit width
// that holds the largest zig-zagged value, and packs all values at that
// fixed width. Layout: one header byte (bit width, 0..64), then the packed
// bits, least-significant-bit-first within each output byte.
func EncodeBitpack(xs []int64) []byte {
	width := bitWidthFor(xs)
	totalBits := len(xs) * int(width)
	out := make([]byte, 1+(totalBits+7)/8)
	out[0] = width

	bitPos := 0
	for _, v := range xs {
		z := Zigzag(v)
		for i := range int(width) {
			if z>>uint(i)&1 != 0 {
				idx := 1 + bitPos/8
				out[idx] |= 1 << uint(bitPos%8)
			}
			bitPos++
		}
	}
	return out
}

func bitWidthFor(xs []int64) uint8 {
	var maxZ uint64
	for _, v := range xs {
		if z := Zigzag(v); z > maxZ {
			maxZ = z
		}
	}
	var width uint8
	for maxZ > 0 {
		width++
		maxZ >>= 1
	}
	return width
}

// DecodeBitpack unpacks n values previously produced by EncodeBitpack.
func DecodeBitpack(b []byte, n int) ([]int64, error) {
	if len(b) < 1 {
		return nil, errs.Incomplete("bitutil.DecodeBitpack", errTruncatedVarint)
	}
	width := b[0]
	body := b[1:]
	needBits := n * int(width)
	if len(body)*8 < needBits {
		return nil, errs.Incomplete("bitutil.DecodeBitpack", errTruncatedVarint)
	}

	out := make([]int64, 0, n)
	bitPos := 0
	for range n {
		var z uint64
		for i := range int(width) {
			byteIdx := bitPos / 8
			if body[byteIdx]>>uint(bitPos%8)&1 != 0 {
				z |= 1 << uint(i)
			}
			bitPos++
		}
		out = append(out, Unzigzag(z))
	}
	return out, nil
}
