package cell

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Builder accumulates the data and references of a cell. The first error
// sticks and is returned by Build.
type Builder struct {
	data []byte
	refs []*Cell
	err  error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) grow(n, refs int) bool {
	if b.err != nil {
		return false
	}
	if len(b.data)+n > MaxBytes || len(b.refs)+refs > MaxRefs {
		b.err = ErrOverflow{Bytes: len(b.data) + n, Refs: len(b.refs) + refs}
		return false
	}
	return true
}

func (b *Builder) StoreUint8(v uint8) *Builder {
	if b.grow(1, 0) {
		b.data = append(b.data, v)
	}
	return b
}

func (b *Builder) StoreUint16(v uint16) *Builder {
	if b.grow(2, 0) {
		b.data = binary.BigEndian.AppendUint16(b.data, v)
	}
	return b
}

func (b *Builder) StoreUint32(v uint32) *Builder {
	if b.grow(4, 0) {
		b.data = binary.BigEndian.AppendUint32(b.data, v)
	}
	return b
}

func (b *Builder) StoreUint64(v uint64) *Builder {
	if b.grow(8, 0) {
		b.data = binary.BigEndian.AppendUint64(b.data, v)
	}
	return b
}

// StoreBytes appends p as is.
func (b *Builder) StoreBytes(p []byte) *Builder {
	if b.grow(len(p), 0) {
		b.data = append(b.data, p...)
	}
	return b
}

// StoreFixed appends p padded with zeros, or zeros for an empty p, to n
// bytes. A longer p is an error.
func (b *Builder) StoreFixed(p []byte, n int) *Builder {
	if b.err == nil && len(p) > n {
		b.err = fmt.Errorf("%d bytes do not fit a field of %d", len(p), n)
		return b
	}
	if b.grow(n, 0) {
		b.data = append(b.data, p...)
		b.data = append(b.data, make([]byte, n-len(p))...)
	}
	return b
}

// StoreTime appends the unix seconds and the nanoseconds of t as two
// uint32. Seconds before the epoch are stored as zero.
func (b *Builder) StoreTime(t time.Time) *Builder {
	secs := t.Unix()
	if secs < 0 {
		secs = 0
	}
	if b.err == nil && secs > math.MaxUint32 {
		b.err = fmt.Errorf("time %v does not fit 32 bits of seconds", t)
		return b
	}
	return b.StoreUint32(uint32(secs)).StoreUint32(uint32(t.Nanosecond()))
}

// StoreRef appends a reference to c.
func (b *Builder) StoreRef(c *Cell) *Builder {
	if b.err == nil && c == nil {
		b.err = fmt.Errorf("nil cell reference")
		return b
	}
	if b.grow(0, 1) {
		b.refs = append(b.refs, c)
	}
	return b
}

// StoreCell appends the data and the references of c.
func (b *Builder) StoreCell(c *Cell) *Builder {
	if b.err == nil && c == nil {
		b.err = fmt.Errorf("nil cell")
		return b
	}
	if b.grow(len(c.data), len(c.refs)) {
		b.data = append(b.data, c.data...)
		b.refs = append(b.refs, c.refs...)
	}
	return b
}

// Err returns the first error the builder ran into.
func (b *Builder) Err() error {
	return b.err
}

// Build returns the cell built so far.
func (b *Builder) Build() (*Cell, error) {
	if b.err != nil {
		return nil, b.err
	}
	c := &Cell{
		data: append([]byte(nil), b.data...),
		refs: append([]*Cell(nil), b.refs...),
	}
	return c, nil
}
