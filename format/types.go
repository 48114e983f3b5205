// Package format defines the small closed enumerations that make up the
// on-disk vocabulary of a GICS file: inner codec ids, outer compression
// ids, stream ids, block flags and file-level flags. These values are
// part of the stable on-disk format (spec.md §6) and must never be
// renumbered without bumping the file version byte.
package format

// InnerCodec identifies the per-block integer-stream codec used inside a
// stream section's manifest entries.
type InnerCodec uint8

const (
	NoneCodec     InnerCodec = 0 // NoneCodec is a placeholder/meta codec that encodes zero bytes.
	VarintDelta   InnerCodec = 1 // VarintDelta zig-zag varint encodes per-element deltas.
	BitpackDelta  InnerCodec = 2 // BitpackDelta bit-packs zig-zagged deltas at a fixed width.
	RLEZigzag     InnerCodec = 3 // RLEZigzag run-length encodes (count, value) pairs.
	RLEDoD        InnerCodec = 4 // RLEDoD run-length encodes a delta-of-delta stream.
	DoDVarint     InnerCodec = 5 // DoDVarint zig-zag varint encodes a delta-of-delta stream.
	DictVarint    InnerCodec = 6 // DictVarint tags each element as a dictionary index or a literal.
	Fixed64LE     InnerCodec = 7 // Fixed64LE stores each element as 8 raw little-endian bytes.
)

func (c InnerCodec) String() string {
	switch c {
	case NoneCodec:
		return "NONE"
	case VarintDelta:
		return "VARINT_DELTA"
	case BitpackDelta:
		return "BITPACK_DELTA"
	case RLEZigzag:
		return "RLE_ZIGZAG"
	case RLEDoD:
		return "RLE_DOD"
	case DoDVarint:
		return "DOD_VARINT"
	case DictVarint:
		return "DICT_VARINT"
	case Fixed64LE:
		return "FIXED64_LE"
	default:
		return "UNKNOWN"
	}
}

// OuterCodec identifies the section-level general compressor applied to a
// stream section's concatenated block payloads.
type OuterCodec uint8

const (
	CompressionNone OuterCodec = 1 // CompressionNone applies no section-level compression.
	CompressionZstd OuterCodec = 2 // CompressionZstd applies Zstandard compression.
	CompressionS2   OuterCodec = 3 // CompressionS2 applies S2 (Snappy-compatible) compression.
	CompressionLZ4  OuterCodec = 4 // CompressionLZ4 applies LZ4 block compression.
)

func (c OuterCodec) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// StreamID identifies a semantic column (spec.md §3/§6). Schema-extra
// fields are assigned ids starting at StreamSchemaExtraBase, in field
// declaration order.
type StreamID uint8

const (
	StreamTime         StreamID = 10
	StreamValue        StreamID = 20
	StreamMeta         StreamID = 30
	StreamItemID       StreamID = 40
	StreamQuantity     StreamID = 50
	StreamSnapshotLen  StreamID = 60
	StreamSchemaExtraBase StreamID = 100
)

func (s StreamID) String() string {
	switch s {
	case StreamTime:
		return "TIME"
	case StreamValue:
		return "VALUE"
	case StreamMeta:
		return "META"
	case StreamItemID:
		return "ITEM_ID"
	case StreamQuantity:
		return "QUANTITY"
	case StreamSnapshotLen:
		return "SNAPSHOT_LEN"
	default:
		return "SCHEMA_EXTRA"
	}
}

// BlockFlag is a bitmask recording CHM routing/health annotations for a
// single block's manifest entry (spec.md §6).
type BlockFlag uint8

const (
	FlagNone         BlockFlag = 0
	FlagAnomalyStart BlockFlag = 1
	FlagAnomalyMid   BlockFlag = 2
	FlagAnomalyEnd   BlockFlag = 4
	FlagHealthWarn   BlockFlag = 8
	FlagHealthQuar   BlockFlag = 16
)

func (f BlockFlag) Has(bit BlockFlag) bool { return f&bit != 0 }

// FileFlag is the file-header 32-bit flag word (spec.md §6).
type FileFlag uint32

const (
	FlagHasSchema FileFlag = 0x04
	FlagEncrypted FileFlag = 0x80
)

func (f FileFlag) Has(bit FileFlag) bool { return f&bit != 0 }
