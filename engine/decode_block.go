package engine

import (
	"github.com/gicsdb/gics/blockctx"
	"github.com/gicsdb/gics/codec"
	"github.com/gicsdb/gics/fieldmath"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/section"
)

// decodeIntBlock inverts commitIntBlock for one manifest entry. It never
// re-runs the CHM: a QUARANTINE-routed block is identified purely from
// its manifest flags (FlagHealthQuar, set on every QUARANTINE block and
// on no other route — see chm.Monitor.Update), and such a block leaves
// ctx's last value/delta/dictionary untouched, mirroring the encoder's
// own "QUARANTINE does not mutate persistent context" invariant.
func decodeIntBlock(entry section.ManifestEntry, payload []byte, isTime bool, ctx *blockctx.Context) ([]int64, error) {
	n := int(entry.NItems)

	if entry.Codec == format.DictVarint {
		raw, err := codec.DecodeDict(payload, n, ctx)
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			ctx.SetLastValue(raw[len(raw)-1])
		}
		return raw, nil
	}

	derived, err := codec.Decode(entry.Codec, payload, n)
	if err != nil {
		return nil, err
	}

	updateCtx := !entry.Flags.Has(format.FlagHealthQuar)
	var raw []int64
	var nextV, nextDelta int64
	if isTime {
		lastTS, _ := ctx.LastValue()
		lastDelta, _ := ctx.LastDelta()
		raw, nextV, nextDelta = fieldmath.ReconstructTime(derived, lastTS, lastDelta)
	} else {
		lastV, _ := ctx.LastValue()
		raw, nextV = fieldmath.ReconstructValue(derived, lastV)
	}
	if updateCtx {
		ctx.SetLastValue(nextV)
		if isTime {
			ctx.SetLastDelta(nextDelta)
		}
	}
	return raw, nil
}

// decodeFloatBlock inverts commitFloatBlock: FIXED64_LE blocks decode
// straight back to float64 via their IEEE-754 bit pattern without
// touching ctx (the encoder never reads or writes context for them
// either); every other codec goes through decodeIntBlock and the result
// converts back to float64 one-for-one.
func decodeFloatBlock(entry section.ManifestEntry, payload []byte, ctx *blockctx.Context) ([]float64, error) {
	if entry.Codec == format.Fixed64LE {
		bits, err := codec.Decode(format.Fixed64LE, payload, int(entry.NItems))
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(bits))
		for i, b := range bits {
			out[i] = codec.BitsToFloat64(b)
		}
		return out, nil
	}

	ints, err := decodeIntBlock(entry, payload, false, ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ints))
	for i, v := range ints {
		out[i] = float64(v)
	}
	return out, nil
}
