package engine

import (
	"sort"

	"github.com/gicsdb/gics/bitutil"
	"github.com/gicsdb/gics/chm"
	"github.com/gicsdb/gics/crypt"
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/internal/pool"
	"github.com/gicsdb/gics/schema"
	"github.com/gicsdb/gics/section"
	"github.com/gicsdb/gics/snapshot"
)

// Encoder accumulates snapshots in memory and, on Finish, assembles them
// into one GICS file. It carries the Receiving/Flushing/Finalized state
// machine of spec §4.11: AddSnapshot only succeeds in Receiving, and
// Finish only succeeds once.
type Encoder struct {
	opts  Options
	phase encoderPhase
	eng   endian.EndianEngine

	plan   []streamPlan
	states map[format.StreamID]*streamState

	snapshots []snapshot.Snapshot
	segmentID uint32

	encKey    *[crypt.KeySize]byte
	salt      [crypt.SaltSize]byte
	fileNonce [crypt.FileNonceSize]byte
}

// NewEncoder builds an Encoder from the given options, deriving a key and
// generating a random salt/file-nonce up front if WithPassword was used —
// the only source of per-file non-determinism the encode path permits.
func NewEncoder(opts ...Option) (*Encoder, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	seedByStream := make(map[format.StreamID]*StreamState, len(o.InitialState))
	for i := range o.InitialState {
		s := o.InitialState[i]
		seedByStream[s.Stream] = &s
	}

	plan := buildStreamPlan(o.Schema)
	states := make(map[format.StreamID]*streamState, len(plan))
	for _, sp := range plan {
		states[sp.id] = newStreamState(sp.id, sp.isTime, probeInterval(o), seedByStream[sp.id])
	}

	e := &Encoder{
		opts:   o,
		plan:   plan,
		states: states,
		eng:    endian.GetLittleEndianEngine(),
	}

	if o.Password != "" {
		salt, err := crypt.RandomSalt()
		if err != nil {
			return nil, err
		}
		nonce, err := crypt.RandomFileNonce()
		if err != nil {
			return nil, err
		}
		key := crypt.DeriveKey(o.Password, salt, o.KDFIterations)
		e.salt = salt
		e.fileNonce = nonce
		e.encKey = &key
	}

	return e, nil
}

// AddSnapshot buffers one snapshot. It is only valid while the encoder is
// still receiving input.
func (e *Encoder) AddSnapshot(s snapshot.Snapshot) error {
	if e.phase != phaseReceiving {
		return errs.Usage("engine.Encoder.AddSnapshot", errAddAfterFinish)
	}
	e.snapshots = append(e.snapshots, s)
	return nil
}

// Finish assembles and returns the complete file. A second call is a
// UsageError (spec §7): Finish is not idempotent across calls, only
// within the single call that performs the flush.
func (e *Encoder) Finish() ([]byte, error) {
	if e.phase == phaseFinalized {
		return nil, errs.Usage("engine.Encoder.Finish", errAlreadyFinalized)
	}
	e.phase = phaseFlushing

	flags := format.FileFlag(0)
	if e.opts.Schema.ID != schema.Legacy().ID {
		flags |= format.FlagHasSchema
	}
	if e.encKey != nil {
		flags |= format.FlagEncrypted
	}

	out := make([]byte, 0, 4096)
	header := section.FileHeader{Version: section.Version, Flags: flags, StreamCount: uint16(len(e.plan))}
	out = append(out, header.Bytes(e.eng)...)

	if flags.Has(format.FlagHasSchema) {
		out = append(out, section.SchemaBlobBytes(e.eng, e.opts.Schema)...)
	}
	if e.encKey != nil {
		ench := section.EncHeader{
			Mode:       section.EncModeAESGCM256,
			Salt:       e.salt,
			AuthVerify: crypt.AuthVerifier(*e.encKey),
			KDFID:      section.KDFPBKDF2,
			Iterations: e.opts.KDFIterations,
			DigestID:   section.DigestSHA256,
			FileNonce:  e.fileNonce,
		}
		out = append(out, ench.Bytes(e.eng)...)
	}

	for _, batch := range e.batchSnapshots() {
		segBytes, err := e.buildSegment(batch)
		if err != nil {
			return nil, err
		}
		out = append(out, segBytes...)
		e.segmentID++
	}

	trailer := section.EOSTrailer{FileHash: bitutil.SHA256(out), CRC32: bitutil.CRC32(out)}
	out = append(out, trailer.Bytes(e.eng)...)

	e.phase = phaseFinalized
	return out, nil
}

// Telemetry returns one CHM report per stream (spec §4.7 "telemetry").
func (e *Encoder) Telemetry() []chm.Report {
	reports := make([]chm.Report, 0, len(e.plan))
	for _, sp := range e.plan {
		reports = append(reports, e.states[sp.id].mon.Report(e.opts.RunID, section.Version))
	}
	return reports
}

// Annotations returns every block's regime/flag annotation across every
// stream, in stream-plan order.
func (e *Encoder) Annotations() []BlockAnnotation {
	var out []BlockAnnotation
	for _, sp := range e.plan {
		out = append(out, e.states[sp.id].annotations...)
	}
	return out
}

// FinalState exports every stream's persistent context and CHM baselines,
// for seeding a later encoder run via WithInitialState (spec §9).
func (e *Encoder) FinalState() []StreamState {
	out := make([]StreamState, 0, len(e.plan))
	for _, sp := range e.plan {
		out = append(out, e.states[sp.id].export())
	}
	return out
}

// snapshotEstimate is the per-snapshot raw-byte cost batchSnapshots
// budgets against: 8 bytes each for TIME and SNAPSHOT_LEN, plus 8 bytes
// for each item's ITEM_ID and 8 bytes per schema field. This is a static
// estimate of the uncompressed column width, not the actual encoded size
// — segments close on predicted input size, never on realized output
// size, so segment boundaries never depend on codec or CHM behavior.
func (e *Encoder) snapshotEstimate(s snapshot.Snapshot) int {
	perItem := 8 + 8*len(e.opts.Schema.Fields)
	return 16 + len(s.Items)*perItem
}

// batchSnapshots splits the buffered snapshots into segment-sized runs,
// closing a batch as soon as the next snapshot would push its estimated
// raw size past SegmentSizeLimit (spec §3 "Segment").
func (e *Encoder) batchSnapshots() [][]snapshot.Snapshot {
	if len(e.snapshots) == 0 {
		return nil
	}
	limit := e.opts.SegmentSizeLimit
	if limit <= 0 {
		limit = DefaultSegmentSizeLimit
	}

	var batches [][]snapshot.Snapshot
	var cur []snapshot.Snapshot
	curBytes := 0
	for _, s := range e.snapshots {
		est := e.snapshotEstimate(s)
		if len(cur) > 0 && curBytes+est > limit {
			batches = append(batches, cur)
			cur = nil
			curBytes = 0
		}
		cur = append(cur, s)
		curBytes += est
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches
}

// buildSegment flattens one batch of snapshots into the wide per-stream
// column layout, commits every stream's blocks, and assembles the
// segment's on-disk bytes: header, stream sections, item-id index, and a
// footer hashed over the segment's own preceding bytes.
func (e *Encoder) buildSegment(batch []snapshot.Snapshot) ([]byte, error) {
	timeVals, putTime := pool.GetInt64Slice(len(batch))
	defer putTime()
	lenVals, putLen := pool.GetInt64Slice(len(batch))
	defer putLen()
	var itemIDVals []int64
	fieldVals := make(map[string][]float64, len(e.opts.Schema.Fields))
	for _, f := range e.opts.Schema.Fields {
		fieldVals[f.Name] = nil
	}

	strDict := make(map[string]int)
	var dictOrder []string
	numericSet := make(map[uint64]struct{})

	for i, snap := range batch {
		timeVals[i] = snap.Timestamp
		ids := snap.SortedItemIDs()
		lenVals[i] = int64(len(ids))
		for _, id := range ids {
			var iv int64
			if id.IsString {
				idx, ok := strDict[id.String]
				if !ok {
					idx = len(dictOrder)
					strDict[id.String] = idx
					dictOrder = append(dictOrder, id.String)
				}
				iv = int64(idx)
			} else {
				iv = int64(id.Numeric)
				numericSet[id.Numeric] = struct{}{}
			}
			itemIDVals = append(itemIDVals, iv)

			fields := snap.Items[id]
			for _, f := range e.opts.Schema.Fields {
				fieldVals[f.Name] = append(fieldVals[f.Name], fields[f.Name])
			}
		}
	}

	streamBytes := make([][]byte, 0, len(e.plan))
	for _, sp := range e.plan {
		st := e.states[sp.id]
		sb := newSectionBuilder()

		switch sp.id {
		case format.StreamTime:
			for _, blk := range chunkInts(timeVals, e.opts.BlockSize) {
				entry, payload := st.commitIntBlock(blk)
				sb.add(entry, payload)
			}
		case format.StreamSnapshotLen:
			for _, blk := range chunkInts(lenVals, e.opts.BlockSize) {
				entry, payload := st.commitIntBlock(blk)
				sb.add(entry, payload)
			}
		case format.StreamItemID:
			for _, blk := range chunkInts(itemIDVals, e.opts.BlockSize) {
				entry, payload := st.commitIntBlock(blk)
				sb.add(entry, payload)
			}
		default:
			for _, blk := range chunkFloats(fieldVals[sp.fieldName], e.opts.BlockSize) {
				entry, payload := st.commitFloatBlock(blk)
				sb.add(entry, payload)
			}
		}

		secBytes, err := buildStreamSection(sp.id, sb, e.opts.OuterCodec, e.eng, e.encKey, e.fileNonce, e.segmentID)
		sb.release()
		if err != nil {
			return nil, err
		}
		streamBytes = append(streamBytes, secBytes)
	}

	header := section.SegmentHeader{SegmentID: e.segmentID, StreamCount: uint16(len(e.plan))}
	indexOffset := uint32(section.SegmentHeaderLen)
	for _, sb := range streamBytes {
		indexOffset += uint32(len(sb))
	}
	header.IndexOffset = indexOffset

	body := make([]byte, 0, indexOffset+64)
	body = append(body, header.Bytes(e.eng)...)
	for _, sb := range streamBytes {
		body = append(body, sb...)
	}

	numericIDs := make([]uint64, 0, len(numericSet))
	for id := range numericSet {
		numericIDs = append(numericIDs, id)
	}
	sort.Slice(numericIDs, func(i, j int) bool { return numericIDs[i] < numericIDs[j] })

	idx := section.Index{ItemIDs: numericIDs, StringKeys: dictOrder}
	body = append(body, idx.Bytes(e.eng)...)

	footer := section.SegmentFooter{Hash: bitutil.SHA256(body), CRC32: bitutil.CRC32(body)}
	body = append(body, footer.Bytes(e.eng)...)

	return body, nil
}

type encoderError string

func (e encoderError) Error() string { return string(e) }

const (
	errAddAfterFinish   = encoderError("add_snapshot called after finish")
	errAlreadyFinalized = encoderError("finish called more than once")
)
