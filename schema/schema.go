// Package schema defines the optional schema profile embedded in a GICS
// file: the item-id kind and the ordered list of fields beyond the
// default {price, quantity}. Grounded on the teacher's blob config
// structs (blob/numeric_encoder_config.go), which hold a small set of
// named, typed options rather than a generic property bag.
package schema

// ItemIDKind selects how ItemId values are represented on the wire.
type ItemIDKind uint8

const (
	ItemIDNumeric ItemIDKind = iota
	ItemIDString
)

// FieldType classifies a schema field as a float-valued measurement or a
// small-integer-coded category.
type FieldType uint8

const (
	FieldNumeric FieldType = iota
	FieldCategorical
)

// CodecHint nudges the encoder toward a stream's natural codec family.
type CodecHint uint8

const (
	HintValue CodecHint = iota
	HintTime
	HintStructural
)

// Field describes one schema-extra column beyond the built-in TIME,
// ITEM_ID, VALUE, QUANTITY and SNAPSHOT_LEN streams.
type Field struct {
	Name      string
	Type      FieldType
	CodecHint CodecHint
	Enum      map[string]int32 // only meaningful when Type == FieldCategorical
}

// Profile is the immutable schema embedded in (or synthesized for) a file.
type Profile struct {
	ID         string
	Version    int
	ItemIDKind ItemIDKind
	Fields     []Field
}

// Legacy returns the frozen default schema assumed for files without an
// embedded schema blob (spec §3 "Schema profile").
func Legacy() Profile {
	return Profile{
		ID:         "legacy",
		Version:    1,
		ItemIDKind: ItemIDNumeric,
		Fields: []Field{
			{Name: "price", Type: FieldNumeric, CodecHint: HintValue},
			{Name: "quantity", Type: FieldNumeric, CodecHint: HintValue},
		},
	}
}
