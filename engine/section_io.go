package engine

import (
	"github.com/gicsdb/gics/bitutil"
	"github.com/gicsdb/gics/compress"
	"github.com/gicsdb/gics/crypt"
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/section"
)

// minCompressibleSize is the floor below which the encoder never bothers
// with an outer codec (spec §4.7 "NONE if payload is small").
const minCompressibleSize = 64

// buildStreamSection assembles one stream section's on-disk bytes:
// header, manifest, then the outer-compressed (and, if encKey is set,
// AEAD-sealed) block payload concatenation. The section hash covers the
// manifest and the final stored bytes together, so a single bit flipped
// anywhere in either — including a block's flags byte — is caught by
// the hash before decompression ever runs (spec §8 property 6).
func buildStreamSection(streamID format.StreamID, sb *sectionBuilder, outerPref format.OuterCodec, eng endian.EndianEngine, encKey *[crypt.KeySize]byte, fileNonce [crypt.FileNonceSize]byte, segmentID uint32) ([]byte, error) {
	raw := sb.payload
	outer := outerPref
	if len(raw) < minCompressibleSize {
		outer = format.CompressionNone
	}

	codec, err := compress.GetCodec(outer)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(raw)
	if err != nil {
		return nil, err
	}
	if outer != format.CompressionNone && len(compressed) >= len(raw) {
		outer = format.CompressionNone
		compressed = raw
	}

	stored := compressed
	if encKey != nil {
		nonce := crypt.SectionNonce(*encKey, fileNonce, uint8(streamID), segmentID)
		stored, err = crypt.Seal(*encKey, nonce, compressed)
		if err != nil {
			return nil, err
		}
	}

	manifestBytes := make([]byte, 0, len(sb.manifest)*section.ManifestEntryLen)
	for _, e := range sb.manifest {
		manifestBytes = section.AppendManifestEntry(manifestBytes, eng, e)
	}

	hashInput := make([]byte, 0, len(manifestBytes)+len(stored))
	hashInput = append(hashInput, manifestBytes...)
	hashInput = append(hashInput, stored...)

	header := section.StreamSectionHeader{
		StreamID:    streamID,
		OuterCodec:  outer,
		BlockCount:  uint16(len(sb.manifest)),
		UncompLen:   uint32(len(raw)),
		CompLen:     uint32(len(stored)),
		SectionHash: bitutil.SHA256(hashInput),
	}

	out := header.Bytes(eng)
	out = append(out, manifestBytes...)
	out = append(out, stored...)
	return out, nil
}

// parseStreamSection inverts buildStreamSection, returning the parsed
// header, manifest, the reconstructed raw block-payload concatenation,
// and the number of bytes consumed from b.
func parseStreamSection(b []byte, eng endian.EndianEngine, encKey *[crypt.KeySize]byte, fileNonce [crypt.FileNonceSize]byte, segmentID uint32, maxSectionSize int) (section.StreamSectionHeader, []section.ManifestEntry, []byte, int, error) {
	header, n, err := section.ParseStreamSectionHeader(b, eng)
	if err != nil {
		return section.StreamSectionHeader{}, nil, nil, 0, err
	}
	off := n

	manifestStart := off
	manifest, n2, err := section.ParseManifest(b[off:], eng, int(header.BlockCount))
	if err != nil {
		return section.StreamSectionHeader{}, nil, nil, 0, err
	}
	off += n2
	manifestBytes := b[manifestStart:off]

	if len(b) < off+int(header.CompLen) {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.Incomplete("engine.parseStreamSection", errShortSection)
	}
	stored := b[off : off+int(header.CompLen)]
	off += int(header.CompLen)

	hashInput := make([]byte, 0, len(manifestBytes)+len(stored))
	hashInput = append(hashInput, manifestBytes...)
	hashInput = append(hashInput, stored...)
	if bitutil.SHA256(hashInput) != header.SectionHash {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.Integrity("engine.parseStreamSection", errSectionHashMismatch)
	}

	compressed := stored
	if encKey != nil {
		nonce := crypt.SectionNonce(*encKey, fileNonce, uint8(header.StreamID), segmentID)
		compressed, err = crypt.Open(*encKey, nonce, stored)
		if err != nil {
			return section.StreamSectionHeader{}, nil, nil, 0, err
		}
	}

	if len(compressed) > maxSectionSize {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.LimitExceeded("engine.parseStreamSection", errSectionTooLarge)
	}

	outerCodec, err := compress.GetCodec(header.OuterCodec)
	if err != nil {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.Format("engine.parseStreamSection", err)
	}
	raw, err := outerCodec.Decompress(compressed)
	if err != nil {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.Format("engine.parseStreamSection", err)
	}
	if len(raw) > maxSectionSize {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.LimitExceeded("engine.parseStreamSection", errSectionTooLarge)
	}
	if uint32(len(raw)) != header.UncompLen {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.Format("engine.parseStreamSection", errUncompLenMismatch)
	}

	var manifestPayload uint64
	for _, e := range manifest {
		manifestPayload += uint64(e.PayloadLen)
	}
	if manifestPayload != uint64(len(raw)) {
		return section.StreamSectionHeader{}, nil, nil, 0, errs.Format("engine.parseStreamSection", errManifestPayloadMismatch)
	}

	return header, manifest, raw, off, nil
}

type sectionIOError string

func (e sectionIOError) Error() string { return string(e) }

const (
	errShortSection            = sectionIOError("truncated stream section")
	errSectionHashMismatch     = sectionIOError("stream section hash mismatch")
	errUncompLenMismatch       = sectionIOError("decompressed section length mismatch")
	errSectionTooLarge         = sectionIOError("stream section exceeds configured size cap")
	errManifestPayloadMismatch = sectionIOError("manifest payload lengths do not sum to the decompressed section length")
)
