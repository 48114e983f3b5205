// Package compress implements the outer, section-level compressors
// selectable per stream section (spec §4.9/§6): NONE, Zstd, S2 and LZ4.
// Grounded on the teacher's compress package, retargeted from its own
// per-payload blob compression-type enum to format.OuterCodec. The
// Compressor/Decompressor/Codec interface split and the pooled
// encoder/decoder idiom for Zstd and LZ4 are carried unchanged.
package compress
