package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
)

// SegMagic is the 2-byte segment magic ("SG").
var SegMagic = [2]byte{'S', 'G'}

// SegmentHeaderLen is the fixed size of a segment header: magic(2) +
// header-len(2) + segment-id(4) + index-offset(4) + stream-count(2).
const SegmentHeaderLen = 2 + 2 + 4 + 4 + 2

// SegmentFooterLen is the fixed size of a segment footer: hash(32) + CRC32(4).
const SegmentFooterLen = 32 + 4

// SegmentHeader is the fixed leading portion of one segment.
type SegmentHeader struct {
	SegmentID   uint32
	IndexOffset uint32 // byte offset of SegmentIndex from the start of this segment
	StreamCount uint16
}

func (h SegmentHeader) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, SegmentHeaderLen)
	out = append(out, SegMagic[:]...)
	out = eng.AppendUint16(out, uint16(SegmentHeaderLen))
	out = eng.AppendUint32(out, h.SegmentID)
	out = eng.AppendUint32(out, h.IndexOffset)
	out = eng.AppendUint16(out, h.StreamCount)
	return out
}

func ParseSegmentHeader(b []byte, eng endian.EndianEngine) (SegmentHeader, int, error) {
	if len(b) < SegmentHeaderLen {
		return SegmentHeader{}, 0, errs.Incomplete("section.ParseSegmentHeader", errShort)
	}
	if [2]byte(b[:2]) != SegMagic {
		return SegmentHeader{}, 0, errs.Format("section.ParseSegmentHeader", errBadSegMagic)
	}
	headerLen := eng.Uint16(b[2:4])
	if int(headerLen) != SegmentHeaderLen {
		return SegmentHeader{}, 0, errs.Format("section.ParseSegmentHeader", errBadSegHeaderLen)
	}
	segID := eng.Uint32(b[4:8])
	idxOff := eng.Uint32(b[8:12])
	streamCount := eng.Uint16(b[12:14])
	return SegmentHeader{SegmentID: segID, IndexOffset: idxOff, StreamCount: streamCount}, SegmentHeaderLen, nil
}

// SegmentFooter closes a segment with a content hash and a CRC32 over the
// same bytes, providing two independently-computed integrity checks.
type SegmentFooter struct {
	Hash  [32]byte
	CRC32 uint32
}

func (f SegmentFooter) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, SegmentFooterLen)
	out = append(out, f.Hash[:]...)
	out = eng.AppendUint32(out, f.CRC32)
	return out
}

func ParseSegmentFooter(b []byte, eng endian.EndianEngine) (SegmentFooter, error) {
	if len(b) < SegmentFooterLen {
		return SegmentFooter{}, errs.Incomplete("section.ParseSegmentFooter", errShort)
	}
	var hash [32]byte
	copy(hash[:], b[:32])
	crc := eng.Uint32(b[32:36])
	return SegmentFooter{Hash: hash, CRC32: crc}, nil
}

const (
	errBadSegMagic     = frameError("bad segment magic")
	errBadSegHeaderLen = frameError("bad segment header length")
)
