// Package cell implements the bounded frames messages to the TON side are
// laid out in. A Cell holds at most MaxBytes bytes of data and MaxRefs
// references to other cells. Larger values are split into linked chains of
// cells (Chunk) and sequences into snake lists (List).
//
// Cells are immutable once built, so a tree of cells never contains a
// cycle.
package cell

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
)

const (
	// MaxBytes is the data capacity of a cell: 1023 bits rounded down to
	// whole bytes, less one.
	MaxBytes = 127
	// MaxRefs is the number of references a cell can hold.
	MaxRefs = 4
)

// Cell is an immutable frame of data and references.
type Cell struct {
	data []byte
	refs []*Cell
}

// empty is the terminator of chains and lists.
var empty = &Cell{}

// Empty returns the cell without data and references.
func Empty() *Cell {
	return empty
}

// Data returns the data of the cell. It must not be modified.
func (c *Cell) Data() []byte {
	return c.data
}

// Refs returns the references of the cell. It must not be modified.
func (c *Cell) Refs() []*Cell {
	return c.refs
}

// IsEmpty reports whether c holds neither data nor references.
func (c *Cell) IsEmpty() bool {
	return len(c.data) == 0 && len(c.refs) == 0
}

// BeginParse returns a Slice reading c from the start.
func (c *Cell) BeginParse() *Slice {
	return &Slice{c: c}
}

// Hash returns the SHA-256 of the reference count, the data length, the
// data and the hashes of the references in order.
func (c *Cell) Hash() []byte {
	h := sha256.New()
	h.Write([]byte{byte(len(c.refs)), byte(len(c.data))})
	h.Write(c.data)
	for _, r := range c.refs {
		h.Write(r.Hash())
	}
	return h.Sum(nil)
}

// Equal reports whether both trees hold the same data.
func (c *Cell) Equal(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}
	if !bytes.Equal(c.data, o.data) || len(c.refs) != len(o.refs) {
		return false
	}
	for i := range c.refs {
		if !c.refs[i].Equal(o.refs[i]) {
			return false
		}
	}
	return true
}

// Depth returns the length of the longest path to a leaf.
func (c *Cell) Depth() int {
	d := 0
	for _, r := range c.refs {
		if rd := r.Depth() + 1; rd > d {
			d = rd
		}
	}
	return d
}

func (c *Cell) String() string {
	var sb strings.Builder
	c.dump(&sb, 0)
	return sb.String()
}

func (c *Cell) dump(sb *strings.Builder, indent int) {
	fmt.Fprintf(sb, "%sx{%X}\n", strings.Repeat("  ", indent), c.data)
	for _, r := range c.refs {
		r.dump(sb, indent+1)
	}
}

// ErrOverflow is returned when a builder exceeds the capacity of a cell.
type ErrOverflow struct {
	Bytes int
	Refs  int
}

func (e ErrOverflow) Error() string {
	return fmt.Sprintf("cell overflow: %d bytes (max %d), %d refs (max %d)", e.Bytes, MaxBytes, e.Refs, MaxRefs)
}

// ErrUnderflow is returned when a slice is read past its end.
type ErrUnderflow struct {
	Want, Have int
	Refs       bool
}

func (e ErrUnderflow) Error() string {
	what := "bytes"
	if e.Refs {
		what = "refs"
	}
	return fmt.Sprintf("cell underflow: want %d %s, have %d", e.Want, what, e.Have)
}
