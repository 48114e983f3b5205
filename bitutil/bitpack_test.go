package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitpackRoundTrip(t *testing.T) {
	cases := [][]int64{
		{0, 0, 0, 0},
		{1, -1, 2, -2, 3, -3},
		{0},
		{},
		{100, -100, 50, -50, 0, 0, 1},
	}
	for _, xs := range cases {
		enc := EncodeBitpack(xs)
		got, err := DecodeBitpack(enc, len(xs))
		require.NoError(t, err)
		assert.Equal(t, xs, got)
	}
}

func TestBitpackWideValues(t *testing.T) {
	xs := []int64{1 << 40, -(1 << 40), 0, 1 << 62}
	enc := EncodeBitpack(xs)
	got, err := DecodeBitpack(enc, len(xs))
	require.NoError(t, err)
	assert.Equal(t, xs, got)
}

func TestDecodeBitpackTruncated(t *testing.T) {
	xs := []int64{1, 2, 3, 4, 5}
	enc := EncodeBitpack(xs)
	_, err := DecodeBitpack(enc[:len(enc)-1], len(xs))
	require.Error(t, err)
}
