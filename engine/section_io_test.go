package engine

import (
	"testing"

	"github.com/gicsdb/gics/crypt"
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBuilder() *sectionBuilder {
	sb := newSectionBuilder()
	sb.add(section.ManifestEntry{Codec: format.VarintDelta, NItems: 3, PayloadLen: 6}, []byte{1, 2, 3, 4, 5, 6})
	sb.add(section.ManifestEntry{Codec: format.BitpackDelta, NItems: 2, PayloadLen: 4}, []byte{7, 8, 9, 10})
	return sb
}

func TestBuildAndParseStreamSectionRoundTrip(t *testing.T) {
	eng := endian.GetLittleEndianEngine()
	sb := sampleBuilder()

	out, err := buildStreamSection(format.StreamValue, sb, format.CompressionZstd, eng, nil, [crypt.FileNonceSize]byte{}, 0)
	require.NoError(t, err)

	hdr, manifest, raw, consumed, err := parseStreamSection(out, eng, nil, [crypt.FileNonceSize]byte{}, 0, DefaultMaxSectionSize)
	require.NoError(t, err)
	assert.Equal(t, len(out), consumed)
	assert.Equal(t, format.StreamValue, hdr.StreamID)
	assert.Equal(t, sb.manifest, manifest)
	assert.Equal(t, sb.payload, raw)
}

func TestBuildAndParseStreamSectionEncrypted(t *testing.T) {
	eng := endian.GetLittleEndianEngine()
	sb := sampleBuilder()

	var salt [crypt.SaltSize]byte
	key := crypt.DeriveKey("hunter2", salt, 100)
	var fileNonce [crypt.FileNonceSize]byte
	fileNonce[0] = 0x42

	out, err := buildStreamSection(format.StreamQuantity, sb, format.CompressionS2, eng, &key, fileNonce, 5)
	require.NoError(t, err)

	_, manifest, raw, _, err := parseStreamSection(out, eng, &key, fileNonce, 5, DefaultMaxSectionSize)
	require.NoError(t, err)
	assert.Equal(t, sb.manifest, manifest)
	assert.Equal(t, sb.payload, raw)

	// Wrong segment id changes the derived nonce, which must fail AEAD open.
	_, _, _, _, err = parseStreamSection(out, eng, &key, fileNonce, 6, DefaultMaxSectionSize)
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindIntegrity, e.Kind)
}

func TestParseStreamSectionDetectsTamperedManifest(t *testing.T) {
	eng := endian.GetLittleEndianEngine()
	sb := sampleBuilder()

	out, err := buildStreamSection(format.StreamValue, sb, format.CompressionNone, eng, nil, [crypt.FileNonceSize]byte{}, 0)
	require.NoError(t, err)

	// Flip a bit in the first manifest entry's flags byte, well before the
	// payload. The section hash covers the manifest too, so this must be
	// caught even though it never touches the compressed payload bytes.
	tampered := append([]byte(nil), out...)
	tampered[section.StreamSectionHeaderLen+section.ManifestEntryLen-1] ^= 0x01

	_, _, _, _, err = parseStreamSection(tampered, eng, nil, [crypt.FileNonceSize]byte{}, 0, DefaultMaxSectionSize)
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindIntegrity, e.Kind)
}
