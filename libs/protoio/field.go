package protoio

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Appender is implemented by hand written messages. AppendProto must append
// exactly Size() bytes.
type Appender interface {
	Size() int
	AppendProto(b []byte) []byte
}

// Marshal encodes m into a freshly allocated buffer of the right size.
func Marshal(m Appender) []byte {
	return m.AppendProto(make([]byte, 0, m.Size()))
}

// The Append*Field helpers follow proto3 presence: a field holding its
// default value is not written at all.

func AppendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func AppendInt64Field(b []byte, num protowire.Number, v int64) []byte {
	return AppendVarintField(b, num, uint64(v))
}

func AppendSfixed64Field(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, uint64(v))
}

func AppendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func AppendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// AppendMessageField writes m as a length delimited submessage. Submessages
// are always written when present, even if they encode to zero bytes.
func AppendMessageField(b []byte, num protowire.Number, m Appender) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(m.Size()))
	return m.AppendProto(b)
}

func SizeVarintField(num protowire.Number, v uint64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

func SizeInt64Field(num protowire.Number, v int64) int {
	return SizeVarintField(num, uint64(v))
}

func SizeSfixed64Field(num protowire.Number, v int64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeFixed64()
}

func SizeBytesField(num protowire.Number, v []byte) int {
	if len(v) == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(v))
}

func SizeStringField(num protowire.Number, v string) int {
	if v == "" {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(v))
}

func SizeMessageField(num protowire.Number, m Appender) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(m.Size())
}

// Field is a single decoded wire field. Varint and fixed width values land
// in Uint, length delimited values in Bytes (aliasing the input).
type Field struct {
	Num   protowire.Number
	Type  protowire.Type
	Uint  uint64
	Bytes []byte
}

// ReadFields walks the top level fields of a protobuf message in order and
// calls fn for each varint, fixed and length delimited field. Groups are
// skipped.
func ReadFields(bz []byte, fn func(Field) error) error {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return ErrEncoding{Field: "tag", Err: protowire.ParseError(n)}
		}
		bz = bz[n:]

		f := Field{Num: num, Type: typ}
		skip := false
		switch typ {
		case protowire.VarintType:
			f.Uint, n = protowire.ConsumeVarint(bz)
		case protowire.Fixed64Type:
			f.Uint, n = protowire.ConsumeFixed64(bz)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(bz)
			f.Uint = uint64(v)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(bz)
		default:
			n = protowire.ConsumeFieldValue(num, typ, bz)
			skip = true
		}
		if n < 0 {
			return ErrEncoding{Field: "value", Err: protowire.ParseError(n)}
		}
		bz = bz[n:]

		if skip {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Expect checks the wire type of f.
func (f Field) Expect(field string, typ protowire.Type) error {
	if f.Type != typ {
		return WrongType(field, f)
	}
	return nil
}

// CopyBytes returns a copy of a length delimited value so decoded messages
// do not alias the input buffer.
func (f Field) CopyBytes() []byte {
	if len(f.Bytes) == 0 {
		return nil
	}
	bz := make([]byte, len(f.Bytes))
	copy(bz, f.Bytes)
	return bz
}
