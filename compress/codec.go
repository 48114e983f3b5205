package compress

import (
	"fmt"

	"github.com/gicsdb/gics/format"
)

// Compressor compresses a stream section's concatenated block payloads
// (spec §4.7 step "assemble stream sections").
type Compressor interface {
	// Compress returns the compressed result. The returned slice may share
	// memory with data (NoOpCompressor returns data itself); data is not
	// modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor inverts a Compressor. Decompress validates the input and
// returns an error if it is corrupted or was produced by a different
// algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions for one outer compression algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns the Codec for the given outer codec id.
func CreateCodec(c format.OuterCodec, target string) (Codec, error) {
	switch c {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, c)
	}
}

var builtinCodecs = map[format.OuterCodec]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified outer codec id.
func GetCodec(c format.OuterCodec) (Codec, error) {
	if codec, ok := builtinCodecs[c]; ok {
		return codec, nil
	}
	return nil, fmt.Errorf("unsupported compression type: %s", c)
}
