package codec

import (
	"testing"

	"github.com/gicsdb/gics/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codecs := []format.InnerCodec{
		format.VarintDelta,
		format.DoDVarint,
		format.BitpackDelta,
		format.RLEZigzag,
		format.RLEDoD,
		format.Fixed64LE,
	}
	xs := []int64{0, 0, 0, 5, 5, -3, -3, -3, 100, -100}

	for _, c := range codecs {
		payload, err := Encode(c, xs)
		require.NoError(t, err, c.String())
		got, err := Decode(c, payload, len(xs))
		require.NoError(t, err, c.String())
		assert.Equal(t, xs, got, c.String())
	}
}

func TestNoneCodec(t *testing.T) {
	payload, err := Encode(format.NoneCodec, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, payload)

	got, err := Decode(format.NoneCodec, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0}, got)
}

func TestUnknownCodec(t *testing.T) {
	_, err := Encode(format.InnerCodec(99), []int64{1})
	require.Error(t, err)
	_, err = Decode(format.InnerCodec(99), nil, 1)
	require.Error(t, err)
}

type fakeDict struct {
	vals []int64
}

func (d *fakeDict) Lookup(v int64) (int, bool) {
	for i, x := range d.vals {
		if x == v {
			return i, true
		}
	}
	return 0, false
}

func (d *fakeDict) Insert(v int64) { d.vals = append(d.vals, v) }

func (d *fakeDict) At(idx int) (int64, bool) {
	if idx < 0 || idx >= len(d.vals) {
		return 0, false
	}
	return d.vals[idx], true
}

func TestDictVarintRoundTrip(t *testing.T) {
	xs := []int64{10, 20, 10, 30, 20, 10}

	encDict := &fakeDict{}
	payload := EncodeDict(xs, encDict)

	decDict := &fakeDict{}
	got, err := DecodeDict(payload, len(xs), decDict)
	require.NoError(t, err)
	assert.Equal(t, xs, got)
}

func TestFloatBitsRoundTrip(t *testing.T) {
	vals := []float64{0, -0.0, 1.5, -1.5}
	for _, f := range vals {
		bits := Float64ToBits(f)
		assert.Equal(t, f, BitsToFloat64(bits))
	}
}
