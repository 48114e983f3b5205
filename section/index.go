package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/internal/hash"
)

// bloomBits is the fixed size (in bits) of a segment's Bloom filter. A
// small filter over item ids is cheap insurance for decoders that only
// need a fast "definitely absent" membership check before a full scan.
const bloomBits = 2048
const bloomBytes = bloomBits / 8
const bloomHashes = 3

// Index is a segment's item-id index: sorted numeric item ids, a small
// Bloom filter over them, and an optional string dictionary for
// string-keyed item ids (spec §3 Segment).
type Index struct {
	ItemIDs    []uint64
	StringKeys []string // present iff the schema's ItemIDKind is string
}

// Bloom builds the filter for the current ItemIDs/StringKeys.
func (idx Index) bloom() []byte {
	b := make([]byte, bloomBytes)
	add := func(key string) {
		base := hash.ID(key)
		for i := range bloomHashes {
			h := base + uint64(i)*0x9E3779B97F4A7C15
			bit := h % bloomBits
			b[bit/8] |= 1 << (bit % 8)
		}
	}
	for _, id := range idx.ItemIDs {
		add(uint64ToKey(id))
	}
	for _, s := range idx.StringKeys {
		add(s)
	}
	return b
}

// MayContainNumeric reports whether id could be present, per the Bloom
// filter encoded alongside ItemIDs (false negatives are impossible, false
// positives are expected and must be followed by a full scan).
func MayContainNumeric(bloom []byte, id uint64) bool {
	return mayContain(bloom, uint64ToKey(id))
}

// MayContainString is the string-key equivalent of MayContainNumeric.
func MayContainString(bloom []byte, key string) bool {
	return mayContain(bloom, key)
}

func mayContain(bloom []byte, key string) bool {
	base := hash.ID(key)
	for i := range bloomHashes {
		h := base + uint64(i)*0x9E3779B97F4A7C15
		bit := h % bloomBits
		if bloom[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

func uint64ToKey(id uint64) string {
	var b [8]byte
	for i := range b {
		b[i] = byte(id >> (8 * i))
	}
	return string(b[:])
}

// Bytes encodes the index as: ItemID count(u32), ItemIDs(8 bytes each),
// Bloom(bloomBytes), StringKey count(u32), then each string as
// length(u16)+bytes.
func (idx Index) Bytes(eng endian.EndianEngine) []byte {
	out := make([]byte, 0, 4+len(idx.ItemIDs)*8+bloomBytes+4)
	out = eng.AppendUint32(out, uint32(len(idx.ItemIDs)))
	for _, id := range idx.ItemIDs {
		out = eng.AppendUint64(out, id)
	}
	out = append(out, idx.bloom()...)
	out = eng.AppendUint32(out, uint32(len(idx.StringKeys)))
	for _, s := range idx.StringKeys {
		out = eng.AppendUint16(out, uint16(len(s)))
		out = append(out, s...)
	}
	return out
}

// ParseIndex reads an Index and its embedded Bloom filter from b, returning
// the index, the raw Bloom bytes, and bytes consumed.
func ParseIndex(b []byte, eng endian.EndianEngine) (Index, []byte, int, error) {
	if len(b) < 4 {
		return Index{}, nil, 0, errs.Incomplete("section.ParseIndex", errShort)
	}
	off := 0
	n := eng.Uint32(b[off:])
	off += 4
	if len(b) < off+int(n)*8+bloomBytes+4 {
		return Index{}, nil, 0, errs.Incomplete("section.ParseIndex", errShort)
	}
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = eng.Uint64(b[off:])
		off += 8
	}
	bloom := make([]byte, bloomBytes)
	copy(bloom, b[off:off+bloomBytes])
	off += bloomBytes

	strCount := eng.Uint32(b[off:])
	off += 4
	keys := make([]string, strCount)
	for i := range keys {
		if len(b) < off+2 {
			return Index{}, nil, 0, errs.Incomplete("section.ParseIndex", errShort)
		}
		l := int(eng.Uint16(b[off:]))
		off += 2
		if len(b) < off+l {
			return Index{}, nil, 0, errs.Incomplete("section.ParseIndex", errShort)
		}
		keys[i] = string(b[off : off+l])
		off += l
	}
	return Index{ItemIDs: ids, StringKeys: keys}, bloom, off, nil
}
