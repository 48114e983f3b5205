package section

import (
	"github.com/gicsdb/gics/endian"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/schema"
)

// SchemaBlobBytes encodes a schema.Profile as: blob length(u32), profile
// id (u16 len + bytes), version(i32), item-id kind(u8), field count(u16),
// then per field: name(u16+bytes), type(u8), codec hint(u8), enum count
// (u16), then per enum entry name(u16+bytes) and value(i32). The leading
// length lets a decoder skip the whole blob without field-by-field
// parsing when only deciding where segments begin.
func SchemaBlobBytes(eng endian.EndianEngine, p schema.Profile) []byte {
	body := make([]byte, 0, 64)
	body = appendString(eng, body, p.ID)
	body = eng.AppendUint32(body, uint32(int32(p.Version)))
	body = append(body, byte(p.ItemIDKind))
	body = eng.AppendUint16(body, uint16(len(p.Fields)))
	for _, f := range p.Fields {
		body = appendString(eng, body, f.Name)
		body = append(body, byte(f.Type))
		body = append(body, byte(f.CodecHint))
		body = eng.AppendUint16(body, uint16(len(f.Enum)))
		for _, name := range sortedEnumNames(f.Enum) {
			body = appendString(eng, body, name)
			body = eng.AppendUint32(body, uint32(f.Enum[name]))
		}
	}

	out := make([]byte, 0, 4+len(body))
	out = eng.AppendUint32(out, uint32(len(body)))
	out = append(out, body...)
	return out
}

// ParseSchemaBlob inverts SchemaBlobBytes, returning the profile and the
// total bytes consumed (including the leading length prefix).
func ParseSchemaBlob(b []byte, eng endian.EndianEngine) (schema.Profile, int, error) {
	if len(b) < 4 {
		return schema.Profile{}, 0, errs.Incomplete("section.ParseSchemaBlob", errShort)
	}
	blobLen := int(eng.Uint32(b))
	if len(b) < 4+blobLen {
		return schema.Profile{}, 0, errs.Incomplete("section.ParseSchemaBlob", errShort)
	}
	body := b[4 : 4+blobLen]

	off := 0
	id, n, err := readString(body[off:], eng)
	if err != nil {
		return schema.Profile{}, 0, err
	}
	off += n

	if len(body) < off+4+1+2 {
		return schema.Profile{}, 0, errs.Incomplete("section.ParseSchemaBlob", errShort)
	}
	version := int32(eng.Uint32(body[off:]))
	off += 4
	kind := schema.ItemIDKind(body[off])
	off++
	fieldCount := int(eng.Uint16(body[off:]))
	off += 2

	fields := make([]schema.Field, fieldCount)
	for i := range fields {
		name, n, err := readString(body[off:], eng)
		if err != nil {
			return schema.Profile{}, 0, err
		}
		off += n

		if len(body) < off+2+2 {
			return schema.Profile{}, 0, errs.Incomplete("section.ParseSchemaBlob", errShort)
		}
		ftype := schema.FieldType(body[off])
		off++
		hint := schema.CodecHint(body[off])
		off++
		enumCount := int(eng.Uint16(body[off:]))
		off += 2

		var enum map[string]int32
		if enumCount > 0 {
			enum = make(map[string]int32, enumCount)
			for range enumCount {
				ename, n, err := readString(body[off:], eng)
				if err != nil {
					return schema.Profile{}, 0, err
				}
				off += n
				if len(body) < off+4 {
					return schema.Profile{}, 0, errs.Incomplete("section.ParseSchemaBlob", errShort)
				}
				enum[ename] = int32(eng.Uint32(body[off:]))
				off += 4
			}
		}

		fields[i] = schema.Field{Name: name, Type: ftype, CodecHint: hint, Enum: enum}
	}

	return schema.Profile{ID: id, Version: int(version), ItemIDKind: kind, Fields: fields}, 4 + blobLen, nil
}

func appendString(eng endian.EndianEngine, dst []byte, s string) []byte {
	dst = eng.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...)
}

func readString(b []byte, eng endian.EndianEngine) (string, int, error) {
	if len(b) < 2 {
		return "", 0, errs.Incomplete("section.readString", errShort)
	}
	l := int(eng.Uint16(b))
	if len(b) < 2+l {
		return "", 0, errs.Incomplete("section.readString", errShort)
	}
	return string(b[2 : 2+l]), 2 + l, nil
}

// sortedEnumNames returns enum's keys in a fixed deterministic order so
// schema blob bytes are reproducible (spec §4.7 "Determinism").
func sortedEnumNames(enum map[string]int32) []string {
	names := make([]string, 0, len(enum))
	for name := range enum {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}
