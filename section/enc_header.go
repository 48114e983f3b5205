package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
)

// EncHeaderLen is the fixed 67-byte size of the encryption header: mode(1)
// + salt(16) + auth-verify(32) + kdf id(1) + iterations(4) + digest id(1)
// + file nonce(12).
const EncHeaderLen = 1 + 16 + 32 + 1 + 4 + 1 + 12

// KDF and digest ids. Only PBKDF2/SHA-256 is implemented; the ids exist so
// the format can add alternatives later without another version bump.
const (
	KDFPBKDF2   uint8 = 1
	DigestSHA256 uint8 = 1
)

// EncMode values.
const (
	EncModeAESGCM256 uint8 = 1
)

// EncHeader carries everything a decoder needs to derive the same key and
// verify the password before attempting to decrypt any section.
type EncHeader struct {
	Mode       uint8
	Salt       [16]byte
	AuthVerify [32]byte
	KDFID      uint8
	Iterations uint32
	DigestID   uint8
	FileNonce  [12]byte
}

func (h EncHeader) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, EncHeaderLen)
	out = append(out, h.Mode)
	out = append(out, h.Salt[:]...)
	out = append(out, h.AuthVerify[:]...)
	out = append(out, h.KDFID)
	out = eng.AppendUint32(out, h.Iterations)
	out = append(out, h.DigestID)
	out = append(out, h.FileNonce[:]...)
	return out
}

func ParseEncHeader(b []byte, eng endian.EndianEngine) (EncHeader, int, error) {
	if len(b) < EncHeaderLen {
		return EncHeader{}, 0, errs.Incomplete("section.ParseEncHeader", errShort)
	}
	var h EncHeader
	off := 0
	h.Mode = b[off]
	off++
	copy(h.Salt[:], b[off:off+16])
	off += 16
	copy(h.AuthVerify[:], b[off:off+32])
	off += 32
	h.KDFID = b[off]
	off++
	h.Iterations = eng.Uint32(b[off : off+4])
	off += 4
	h.DigestID = b[off]
	off++
	copy(h.FileNonce[:], b[off:off+12])
	off += 12
	return h, off, nil
}
