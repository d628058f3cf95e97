package protoio

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxVarintLen64 is the maximum length of a varint encoded 64-bit integer.
const MaxVarintLen64 = 10

// EncodeVarint returns the minimal base-128 encoding of n.
func EncodeVarint(n uint64) []byte {
	return protowire.AppendVarint(make([]byte, 0, protowire.SizeVarint(n)), n)
}

// EncodeLength returns the number of bytes EncodeVarint(n) would produce.
func EncodeLength(n uint64) int {
	return protowire.SizeVarint(n)
}

// EncodeUint64 encodes a signed value in an unsigned context. Negative values
// are rejected.
func EncodeUint64(n int64) ([]byte, error) {
	if n < 0 {
		return nil, ErrEncoding{Field: "uint64", Reason: fmt.Sprintf("negative value %d", n)}
	}
	return EncodeVarint(uint64(n)), nil
}

// EncodeSignedVarint encodes n as a protobuf int64: two's complement, no
// zig-zag. Negative values always take ten bytes.
func EncodeSignedVarint(n int64) []byte {
	return EncodeVarint(uint64(n))
}

// DecodeVarint reads a varint from the front of bz and returns the value and
// the number of bytes consumed.
func DecodeVarint(bz []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(bz)
	if n < 0 {
		return 0, 0, ErrEncoding{Field: "varint", Err: protowire.ParseError(n)}
	}
	return v, n, nil
}

// DecodeSignedVarint is DecodeVarint for int64 fields.
func DecodeSignedVarint(bz []byte) (int64, int, error) {
	v, n, err := DecodeVarint(bz)
	return int64(v), n, err
}

// Uint64LE encodes n as 8 little endian bytes.
func Uint64LE(n uint64) []byte {
	return protowire.AppendFixed64(make([]byte, 0, 8), n)
}

// Int64LE encodes n as 8 little endian two's complement bytes.
func Int64LE(n int64) []byte {
	return Uint64LE(uint64(n))
}

// Uint32LE encodes n as 4 little endian bytes.
func Uint32LE(n uint32) []byte {
	return protowire.AppendFixed32(make([]byte, 0, 4), n)
}

func ParseUint64LE(bz []byte) (uint64, error) {
	v, n := protowire.ConsumeFixed64(bz)
	if n < 0 {
		return 0, ErrEncoding{Field: "fixed64", Err: protowire.ParseError(n)}
	}
	return v, nil
}

func ParseInt64LE(bz []byte) (int64, error) {
	v, err := ParseUint64LE(bz)
	return int64(v), err
}

func ParseUint32LE(bz []byte) (uint32, error) {
	v, n := protowire.ConsumeFixed32(bz)
	if n < 0 {
		return 0, ErrEncoding{Field: "fixed32", Err: protowire.ParseError(n)}
	}
	return v, nil
}
