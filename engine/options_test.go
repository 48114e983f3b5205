package engine

import (
	"testing"

	"github.com/gicsdb/gics/format"
	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	assert.Equal(t, "legacy", o.Schema.ID)
	assert.Equal(t, DefaultBlockSize, o.BlockSize)
	assert.Equal(t, DefaultSegmentSizeLimit, o.SegmentSizeLimit)
	assert.Equal(t, format.CompressionZstd, o.OuterCodec)
}

func TestWithOptionsOverrideDefaults(t *testing.T) {
	o := defaultOptions()
	WithBlockSize(250)(&o)
	WithSegmentSizeLimit(4096)(&o)
	WithPassword("secret")(&o)
	WithOuterCodec(format.CompressionLZ4)(&o)

	assert.Equal(t, 250, o.BlockSize)
	assert.Equal(t, 4096, o.SegmentSizeLimit)
	assert.Equal(t, "secret", o.Password)
	assert.Equal(t, format.CompressionLZ4, o.OuterCodec)
}

func TestProbeIntervalDefaultsWhenUnset(t *testing.T) {
	o := Options{ProbeInterval: 0}
	assert.Equal(t, DefaultProbeInterval, probeInterval(o))

	o.ProbeInterval = 7
	assert.Equal(t, 7, probeInterval(o))
}
