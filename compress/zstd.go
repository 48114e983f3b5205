package compress

// ZstdCompressor is the CompressionZstd outer codec: best compression
// ratio of the four, at the cost of the slowest compress side.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
