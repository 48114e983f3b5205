package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
)

// EOSMarker is the leading byte of the 37-byte EOS trailer.
const EOSMarker byte = 0xFF

// EOSTrailerLen is the fixed size of the trailing EOS block: marker (1) +
// file hash (32) + CRC32 (4).
const EOSTrailerLen = 1 + 32 + 4

// EOSTrailer is the final 37 bytes of a valid GICS file — its presence and
// validity are the sole proof the file was completely written (spec §9).
type EOSTrailer struct {
	FileHash [32]byte
	CRC32    uint32
}

// Bytes encodes the trailer.
func (t EOSTrailer) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, EOSTrailerLen)
	out = append(out, EOSMarker)
	out = append(out, t.FileHash[:]...)
	out = eng.AppendUint32(out, t.CRC32)
	return out
}

// ParseEOSTrailer reads and validates the trailing 37 bytes of b.
func ParseEOSTrailer(b []byte, eng endian.EndianEngine) (EOSTrailer, error) {
	if len(b) < EOSTrailerLen {
		return EOSTrailer{}, errs.Incomplete("section.ParseEOSTrailer", errShort)
	}
	tail := b[len(b)-EOSTrailerLen:]
	if tail[0] != EOSMarker {
		return EOSTrailer{}, errs.Incomplete("section.ParseEOSTrailer", errBadEOSMarker)
	}
	var hash [32]byte
	copy(hash[:], tail[1:33])
	crc := eng.Uint32(tail[33:37])
	return EOSTrailer{FileHash: hash, CRC32: crc}, nil
}

const errBadEOSMarker = frameError("missing EOS marker")
