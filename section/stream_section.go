package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/format"
)

// StreamSectionHeaderLen is the fixed size of a stream section's header:
// stream id(1) + outer codec(1) + block count(2) + uncompressed len(4) +
// compressed len(4) + section hash(32).
const StreamSectionHeaderLen = 1 + 1 + 2 + 4 + 4 + 32

// ManifestEntryLen is the fixed size of one block's manifest entry: inner
// codec(1) + item count(4) + payload length(4) + flags(1).
const ManifestEntryLen = 1 + 4 + 4 + 1

// ManifestEntry describes one block within a stream section.
type ManifestEntry struct {
	Codec      format.InnerCodec
	NItems     uint32
	PayloadLen uint32
	Flags      format.BlockFlag
}

// StreamSectionHeader is the fixed portion preceding a section's manifest
// and compressed payload.
type StreamSectionHeader struct {
	StreamID    format.StreamID
	OuterCodec  format.OuterCodec
	BlockCount  uint16
	UncompLen   uint32
	CompLen     uint32
	SectionHash [32]byte
}

func (h StreamSectionHeader) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, StreamSectionHeaderLen)
	out = append(out, byte(h.StreamID), byte(h.OuterCodec))
	out = eng.AppendUint16(out, h.BlockCount)
	out = eng.AppendUint32(out, h.UncompLen)
	out = eng.AppendUint32(out, h.CompLen)
	out = append(out, h.SectionHash[:]...)
	return out
}

func ParseStreamSectionHeader(b []byte, eng endian.EndianEngine) (StreamSectionHeader, int, error) {
	if len(b) < StreamSectionHeaderLen {
		return StreamSectionHeader{}, 0, errs.Incomplete("section.ParseStreamSectionHeader", errShort)
	}
	h := StreamSectionHeader{
		StreamID:   format.StreamID(b[0]),
		OuterCodec: format.OuterCodec(b[1]),
		BlockCount: eng.Uint16(b[2:4]),
		UncompLen:  eng.Uint32(b[4:8]),
		CompLen:    eng.Uint32(b[8:12]),
	}
	copy(h.SectionHash[:], b[12:44])
	return h, StreamSectionHeaderLen, nil
}

// AppendManifestEntry appends one fixed-size manifest entry to dst.
func AppendManifestEntry(dst []byte, eng endian.EndianEngine, e ManifestEntry) []byte {
	dst = append(dst, byte(e.Codec))
	dst = eng.AppendUint32(dst, e.NItems)
	dst = eng.AppendUint32(dst, e.PayloadLen)
	dst = append(dst, byte(e.Flags))
	return dst
}

// ParseManifest reads count fixed-size manifest entries from b.
func ParseManifest(b []byte, eng endian.EndianEngine, count int) ([]ManifestEntry, int, error) {
	need := count * ManifestEntryLen
	if len(b) < need {
		return nil, 0, errs.Incomplete("section.ParseManifest", errShort)
	}
	out := make([]ManifestEntry, count)
	off := 0
	for i := range out {
		out[i] = ManifestEntry{
			Codec:      format.InnerCodec(b[off]),
			NItems:     eng.Uint32(b[off+1 : off+5]),
			PayloadLen: eng.Uint32(b[off+5 : off+9]),
			Flags:      format.BlockFlag(b[off+9]),
		}
		off += ManifestEntryLen
	}
	return out, off, nil
}
