package engine

import (
	"github.com/gicsdb/gics/format"
	"github.com/gicsdb/gics/schema"
)

const (
	// DefaultBlockSize is the number of values per block when unset.
	DefaultBlockSize = 1000
	// DefaultSegmentSizeLimit is the raw-byte threshold that closes a
	// segment and starts a new one.
	DefaultSegmentSizeLimit = 1 << 20
	// DefaultProbeInterval is P, the CHM's quarantine probe spacing.
	DefaultProbeInterval = 4
	// DefaultKDFIterations is the PBKDF2 iteration count used when a
	// password is set but the caller doesn't override it.
	DefaultKDFIterations = 600_000
	// DefaultMaxSectionSize caps one stream section's outer-decompressed
	// size during decode (spec §4.8 step 4).
	DefaultMaxSectionSize = 1 << 30
)

// StreamState carries one stream's persistent context and CHM baselines
// across encoder runs, the explicit substitute spec §9 mandates in place
// of a shared-singleton "continuity" mode: a caller that wants two
// encoder runs to behave as a continuation of one logical stream passes
// the previous run's FinalState() back in as InitialState.
type StreamState struct {
	Stream         format.StreamID
	LastValue      int64
	HasLastValue   bool
	LastDelta      int64
	HasLastDelta   bool
	Dict           [256]int64
	DictLookup     map[int64]int
	DictCursor     int
	DictFilled     int
	BaselineRatio  float64
	BaselineDev    float64
	BaselineEntropy float64
}

// Options configures an Encoder.
type Options struct {
	Schema           schema.Profile
	Password         string
	KDFIterations    uint32
	ProbeInterval    int
	SegmentSizeLimit int
	BlockSize        int
	RunID            string
	OuterCodec       format.OuterCodec
	InitialState     []StreamState
}

// Option mutates an Options value under construction.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Schema:           schema.Legacy(),
		KDFIterations:    DefaultKDFIterations,
		ProbeInterval:    DefaultProbeInterval,
		SegmentSizeLimit: DefaultSegmentSizeLimit,
		BlockSize:        DefaultBlockSize,
		OuterCodec:       format.CompressionZstd,
	}
}

// WithSchema overrides the legacy {price, quantity} schema.
func WithSchema(p schema.Profile) Option { return func(o *Options) { o.Schema = p } }

// WithPassword enables encryption, deriving the file key from password.
func WithPassword(password string) Option { return func(o *Options) { o.Password = password } }

// WithKDFIterations overrides the PBKDF2 iteration count.
func WithKDFIterations(n uint32) Option { return func(o *Options) { o.KDFIterations = n } }

// WithProbeInterval overrides the CHM's quarantine probe spacing P.
func WithProbeInterval(n int) Option { return func(o *Options) { o.ProbeInterval = n } }

// WithSegmentSizeLimit overrides the raw-byte threshold that closes a
// segment.
func WithSegmentSizeLimit(n int) Option { return func(o *Options) { o.SegmentSizeLimit = n } }

// WithBlockSize overrides the number of values per block.
func WithBlockSize(n int) Option { return func(o *Options) { o.BlockSize = n } }

// WithRunID sets the telemetry run id embedded in CHM reports. It never
// influences on-disk bytes (spec §4.7 "Determinism").
func WithRunID(id string) Option { return func(o *Options) { o.RunID = id } }

// WithOuterCodec overrides the preferred section-level compressor. The
// encoder may still choose NONE for a small or high-entropy section.
func WithOuterCodec(c format.OuterCodec) Option { return func(o *Options) { o.OuterCodec = c } }

// WithInitialState seeds one or more streams' contexts and CHM baselines
// from a previous run's FinalState(), for explicit cross-run continuity.
func WithInitialState(states ...StreamState) Option {
	return func(o *Options) { o.InitialState = append(o.InitialState, states...) }
}

// DecodeOptions configures a Decoder.
type DecodeOptions struct {
	Password       string
	MaxSectionSize int
}

// DecodeOption mutates a DecodeOptions value under construction.
type DecodeOption func(*DecodeOptions)

func defaultDecodeOptions() DecodeOptions {
	return DecodeOptions{MaxSectionSize: DefaultMaxSectionSize}
}

// WithDecodePassword supplies the password for an encrypted file.
func WithDecodePassword(password string) DecodeOption {
	return func(o *DecodeOptions) { o.Password = password }
}

// WithMaxSectionSize overrides the outer-decompression size cap.
func WithMaxSectionSize(n int) DecodeOption {
	return func(o *DecodeOptions) { o.MaxSectionSize = n }
}

// probeInterval resolves the configured CHM probe interval, defaulting
// to DefaultProbeInterval when it is not positive.
func probeInterval(o Options) int {
	if o.ProbeInterval <= 0 {
		return DefaultProbeInterval
	}
	return o.ProbeInterval
}
