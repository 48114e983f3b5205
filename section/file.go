// Package section implements the bit-exact on-disk framing described in
// spec.md §6: file header, optional schema blob, optional encryption
// header, segments (header + stream sections + index + footer), and the
// EOS trailer. Grounded on the teacher's section/numeric_header.go, which
// favors small fixed-size structs with an explicit Bytes()/Parse() pair
// driven by an endian.EndianEngine rather than reflection-based
// marshaling.
package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/format"
)

// Magic is the fixed 4-byte file magic.
var Magic = [4]byte{'G', 'I', 'C', 'S'}

// Version is the current on-disk format version. Only this exact value is
// accepted by Decoder.ParseHeader; unknown versions are a FormatError.
const Version uint8 = 1

// FileHeaderLen is the fixed size of the leading file header, before any
// optional schema blob or encryption header.
const FileHeaderLen = 4 + 1 + 4 + 2 // magic + version + flags + stream count

// FileHeader is the fixed leading portion of a GICS file.
type FileHeader struct {
	Version     uint8
	Flags       format.FileFlag
	StreamCount uint16
}

// Bytes encodes h using eng's byte order (always little-endian per spec §4.9).
func (h FileHeader) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, FileHeaderLen)
	out = append(out, Magic[:]...)
	out = append(out, h.Version)
	out = eng.AppendUint32(out, uint32(h.Flags))
	out = eng.AppendUint16(out, h.StreamCount)
	return out
}

// ParseFileHeader reads a FileHeader from the start of b, returning the
// header and the number of bytes consumed.
func ParseFileHeader(b []byte, eng endian.EndianEngine) (FileHeader, int, error) {
	if len(b) < FileHeaderLen {
		return FileHeader{}, 0, errs.Incomplete("section.ParseFileHeader", errShort)
	}
	if [4]byte(b[:4]) != Magic {
		return FileHeader{}, 0, errs.Format("section.ParseFileHeader", errBadMagic)
	}
	version := b[4]
	if version != Version {
		return FileHeader{}, 0, errs.Format("section.ParseFileHeader", errBadVersion)
	}
	flags := format.FileFlag(eng.Uint32(b[5:9]))
	streamCount := eng.Uint16(b[9:11])
	return FileHeader{Version: version, Flags: flags, StreamCount: streamCount}, FileHeaderLen, nil
}

type frameError string

func (e frameError) Error() string { return string(e) }

const (
	errShort      = frameError("truncated frame")
	errBadMagic   = frameError("bad magic")
	errBadVersion = frameError("unsupported format version")
)
