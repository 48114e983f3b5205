package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZigzagRoundTrip(t *testing.T) {
	vals := []int64{0, 1, -1, 2, -2, 127, -128, 1 << 40, -(1 << 40)}
	for _, v := range vals {
		assert.Equal(t, v, Unzigzag(Zigzag(v)), "value %d", v)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	xs := []int64{0, 1, -1, 1000000, -999999, 1<<33 - 1}
	enc := EncodeVarint(xs)
	got, used, err := DecodeVarint(enc, len(xs))
	require.NoError(t, err)
	assert.Equal(t, len(enc), used)
	assert.Equal(t, xs, got)
}

func TestGetVarintTruncated(t *testing.T) {
	_, _, err := GetVarint(nil)
	require.Error(t, err)

	// A continuation byte with no terminator must not hang or overrun.
	buf := make([]byte, MaxVarintLen+4)
	for i := range buf {
		buf[i] = 0x80
	}
	_, _, err = GetVarint(buf)
	require.Error(t, err)
}
