// Package snapshot defines the caller-facing data model: a timestamped
// mapping from item id to a schema-defined set of fields (spec §3
// "Snapshot"). Grounded on the teacher's metric-identifier duality
// (blob/numeric_encoder.go's StartMetricID/StartMetricName split between
// a caller-supplied numeric id and a caller-supplied name), generalized
// into a single closed ItemID sum type selected once per file by the
// schema's ItemIDKind rather than inferred per call.
package snapshot

import "sort"

// ItemID is a closed sum type: either the numeric or the string arm is
// populated, selected by the embedding schema's ItemIDKind. It is a plain
// comparable struct so it can be used directly as a map key.
type ItemID struct {
	Numeric  uint64
	String   string
	IsString bool
}

// NumericID constructs a numeric ItemID.
func NumericID(v uint64) ItemID { return ItemID{Numeric: v} }

// StringID constructs a string ItemID.
func StringID(v string) ItemID { return ItemID{String: v, IsString: true} }

// Fields is the per-item record, keyed by schema field name. The default
// legacy schema populates exactly "price" and "quantity".
type Fields map[string]float64

// Snapshot is one timestamped multi-item record, ordered by Timestamp by
// convention (not enforced — spec §3).
type Snapshot struct {
	Timestamp int64
	Items     map[ItemID]Fields
}

// SortedItemIDs returns this snapshot's item ids in a fixed deterministic
// order (numeric ascending, or lexicographic for string ids), required
// because Go map iteration order is not stable and the encoder must
// produce byte-identical output for the same input (spec §4.7
// "Determinism").
func (s Snapshot) SortedItemIDs() []ItemID {
	ids := make([]ItemID, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if a.IsString || b.IsString {
			return a.String < b.String
		}
		return a.Numeric < b.Numeric
	})
	return ids
}
