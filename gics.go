// Package gics implements a deterministic, fail-closed binary format for
// compressing sequences of multi-item timestamped snapshots. Pack/Unpack
// are the package's two entry points; everything else — codec selection,
// health monitoring, framing, encryption — lives in the engine and its
// supporting packages and is reached only through these two functions or
// through engine.Encoder/engine.Decoder directly for streaming use.
package gics

import (
	"github.com/gicsdb/gics/chm"
	"github.com/gicsdb/gics/engine"
	"github.com/gicsdb/gics/schema"
	"github.com/gicsdb/gics/snapshot"
)

// Pack encodes snapshots into a complete GICS file in one call.
func Pack(snapshots []snapshot.Snapshot, opts ...engine.Option) ([]byte, error) {
	enc, err := engine.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}
	for _, s := range snapshots {
		if err := enc.AddSnapshot(s); err != nil {
			return nil, err
		}
	}
	return enc.Finish()
}

// Unpack decodes a complete GICS file back into its snapshot list.
func Unpack(data []byte, opts ...engine.DecodeOption) ([]snapshot.Snapshot, error) {
	dec, err := engine.NewDecoder(data, opts...)
	if err != nil {
		return nil, err
	}
	return dec.GetAllSnapshots()
}

// Verify reports whether data's EOS trailer is present and its hash/CRC
// match its preceding bytes. It never requires a password — the trailer
// covers every byte of the file, encrypted sections included, as opaque
// data — so it works as a cheap pre-flight check before Unpack.
func Verify(data []byte) bool {
	return engine.VerifyBytes(data)
}

// Schema returns a file's embedded schema profile (or the legacy default
// if none is embedded) without decoding any snapshot data.
func Schema(data []byte, opts ...engine.DecodeOption) (schema.Profile, error) {
	dec, err := engine.NewDecoder(data, opts...)
	if err != nil {
		return schema.Profile{}, err
	}
	return dec.GetSchema(), nil
}

// Telemetry re-encodes snapshots exactly as Pack would, returning the CHM
// health reports alongside the packed bytes. Useful for callers who want
// both the file and its compression-health diagnostics from one pass
// instead of decoding telemetry back out of the format.
func Telemetry(snapshots []snapshot.Snapshot, opts ...engine.Option) ([]byte, []chm.Report, error) {
	enc, err := engine.NewEncoder(opts...)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range snapshots {
		if err := enc.AddSnapshot(s); err != nil {
			return nil, nil, err
		}
	}
	data, err := enc.Finish()
	if err != nil {
		return nil, nil, err
	}
	return data, enc.Telemetry(), nil
}
