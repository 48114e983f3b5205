package engine

import (
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/schema"
)

// streamPlan is one column of the wide per-snapshot table this package
// encodes: a stream id, the schema field name it carries (empty for the
// three structural streams TIME/SNAPSHOT_LEN/ITEM_ID), and whether it is
// the distinguished time column.
type streamPlan struct {
	id        format.StreamID
	fieldName string
	isTime    bool
}

// buildStreamPlan derives the ordered stream list from a schema profile,
// in field-declaration order (spec §5 "Ordering guarantees"): TIME,
// SNAPSHOT_LEN, ITEM_ID, then one stream per schema field. The first two
// schema fields take the reserved VALUE/QUANTITY ids; any further fields
// are assigned ids from StreamSchemaExtraBase upward, matching the
// legacy {price, quantity} schema's natural mapping.
func buildStreamPlan(p schema.Profile) []streamPlan {
	plan := []streamPlan{
		{id: format.StreamTime, isTime: true},
		{id: format.StreamSnapshotLen},
		{id: format.StreamItemID},
	}
	for i, f := range p.Fields {
		var id format.StreamID
		switch i {
		case 0:
			id = format.StreamValue
		case 1:
			id = format.StreamQuantity
		default:
			id = format.StreamSchemaExtraBase + format.StreamID(i-2)
		}
		plan = append(plan, streamPlan{id: id, fieldName: f.Name})
	}
	return plan
}
