package engine

import (
	"github.com/gicsdb/gics/blockctx"
	"github.com/gicsdb/gics/chm"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/internal/pool"
	"github.com/gicsdb/gics/metrics"
	"github.com/gicsdb/gics/section"
)

// encoderPhase is the encoder's state machine (spec §4.11): Receiving →
// Flushing → Finalized. add_snapshot is valid only in Receiving; finish
// moves through Flushing to Finalized and rejects a second call.
type encoderPhase uint8

const (
	phaseReceiving encoderPhase = iota
	phaseFlushing
	phaseFinalized
)

// BlockAnnotation records one block's regime classification alongside its
// CHM routing outcome, the per-block telemetry spec §4.7 promises
// ("per-block annotations") beyond the CHM's own Report.
type BlockAnnotation struct {
	Stream     format.StreamID
	BlockIndex int
	Regime     metrics.Regime
	Flags      format.BlockFlag
}

// streamState is one stream's persistent encode-time state: the block
// context and CHM monitor that live for the whole encode run (spec §3
// "Lifecycles"), plus the running block index and collected annotations.
type streamState struct {
	id          format.StreamID
	isTime      bool
	ctx         *blockctx.Context
	mon         *chm.Monitor
	blockIndex  int
	annotations []BlockAnnotation
}

func newStreamState(id format.StreamID, isTime bool, probe int, seed *StreamState) *streamState {
	ctx := blockctx.New()
	var mon *chm.Monitor
	if seed != nil {
		ctx.Import(seed.HasLastValue, seed.LastValue, seed.HasLastDelta, seed.LastDelta,
			seed.Dict, seed.DictLookup, seed.DictCursor, seed.DictFilled)
		mon = chm.NewWithBaselines(id, probe, seed.BaselineRatio, seed.BaselineDev, seed.BaselineEntropy)
	} else {
		mon = chm.New(id, probe)
	}
	return &streamState{id: id, isTime: isTime, ctx: ctx, mon: mon}
}

// export converts this stream's live state into a StreamState snapshot
// for cross-run continuity (spec §9).
func (st *streamState) export() StreamState {
	hasLV, lv, hasLD, ld, dict, lookup, cursor, filled := st.ctx.Export()
	ratio, dev, ent := st.mon.Baselines()
	return StreamState{
		Stream: st.id, LastValue: lv, HasLastValue: hasLV, LastDelta: ld, HasLastDelta: hasLD,
		Dict: dict, DictLookup: lookup, DictCursor: cursor, DictFilled: filled,
		BaselineRatio: ratio, BaselineDev: dev, BaselineEntropy: ent,
	}
}

// sectionBuilder accumulates one stream's manifest entries and raw
// (pre-outer-compression) payload bytes within the current segment. The
// payload buffer is drawn from the pooled blob buffer pool, since a
// segment's worth of per-stream accumulation is exactly the repeated
// append-heavy, reused-across-many-blocks workload that pool is built
// for; release() returns it once buildStreamSection has copied out
// everything it needs.
type sectionBuilder struct {
	manifest []section.ManifestEntry
	payload  []byte
	buf      *pool.ByteBuffer
}

func newSectionBuilder() *sectionBuilder {
	buf := pool.GetBlobBuffer()
	return &sectionBuilder{buf: buf, payload: buf.Bytes()}
}

func (sb *sectionBuilder) add(entry section.ManifestEntry, payload []byte) {
	sb.manifest = append(sb.manifest, entry)
	sb.buf.MustWrite(payload)
	sb.payload = sb.buf.Bytes()
}

// release returns the builder's buffer to the pool. Call only after the
// section bytes built from sb.payload have been fully copied out.
func (sb *sectionBuilder) release() {
	pool.PutBlobBuffer(sb.buf)
	sb.buf = nil
	sb.payload = nil
}

// chunkInts splits xs into blocks of at most size elements each.
func chunkInts(xs []int64, size int) [][]int64 {
	if size <= 0 {
		size = DefaultBlockSize
	}
	var out [][]int64
	for off := 0; off < len(xs); off += size {
		end := off + size
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[off:end])
	}
	return out
}

// chunkFloats splits xs into blocks of at most size elements each.
func chunkFloats(xs []float64, size int) [][]float64 {
	if size <= 0 {
		size = DefaultBlockSize
	}
	var out [][]float64
	for off := 0; off < len(xs); off += size {
		end := off + size
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[off:end])
	}
	return out
}

// safeCodec is the CHM's fallback codec for a QUARANTINE-routed block
// (spec §4.7 step 7).
func safeCodec(isTime bool) format.InnerCodec {
	if isTime {
		return format.DoDVarint
	}
	return format.VarintDelta
}

// blockHeaderBytes is the per-block header size CHM's ratio accounts for
// (spec §4.9: codec(1) + n_items(4) + payload_len(4) + flags(1) +
// stream(1) = 11). This implementation's on-disk manifest entry
// (section.ManifestEntryLen) omits the stream byte, since a manifest is
// already scoped to one stream section and storing it per block would be
// redundant — but CHM's ratio threshold is calibrated against the
// spec's 11-byte figure, so probeRatio uses that value rather than the
// wire-level entry size.
const blockHeaderBytes = section.ManifestEntryLen + 1

// probeRatio is the compression ratio CHM decides on: raw bytes over
// (payload + block header bytes) (spec §4.7 step 5).
func probeRatio(rawBytes, payloadLen int) float64 {
	denom := payloadLen + blockHeaderBytes
	if denom <= 0 {
		return float64(rawBytes)
	}
	return float64(rawBytes) / float64(denom)
}
