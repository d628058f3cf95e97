package cell

import (
	"fmt"
)

// Chunk splits data into a chain of cells holding MaxBytes each, except the
// first one which holds the remainder. Every cell of the chain has exactly
// one reference, to the next cell; the last one refers to the empty cell.
// Empty data is the empty cell itself.
func Chunk(data []byte) *Cell {
	next := empty
	for end := len(data); end > 0; end -= MaxBytes {
		start := end - MaxBytes
		if start < 0 {
			start = 0
		}
		next = &Cell{
			data: append([]byte(nil), data[start:end]...),
			refs: []*Cell{next},
		}
	}
	return next
}

// Unchunk joins a chain built by Chunk.
func Unchunk(c *Cell) ([]byte, error) {
	var out []byte
	for i := 0; ; i++ {
		if c == nil {
			return nil, fmt.Errorf("chunk %d: nil cell", i)
		}
		switch len(c.refs) {
		case 0:
			if len(c.data) != 0 {
				return nil, fmt.Errorf("chunk %d: chain must end with the empty cell", i)
			}
			return out, nil
		case 1:
			out = append(out, c.data...)
			c = c.refs[0]
		default:
			return nil, fmt.Errorf("chunk %d: expected one reference, got %d", i, len(c.refs))
		}
	}
}

// List links items into a snake list. Each node refers to the next node
// first and then carries the data and references of its item, so an item
// may use at most MaxRefs-1 references. The list ends with the empty cell.
func List(items []*Cell) (*Cell, error) {
	next := empty
	for i := len(items) - 1; i >= 0; i-- {
		node, err := NewBuilder().StoreRef(next).StoreCell(items[i]).Build()
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		next = node
	}
	return next, nil
}

// ListItems returns the items of a list built by List.
func ListItems(c *Cell) ([]*Cell, error) {
	var items []*Cell
	for i := 0; ; i++ {
		if c == nil {
			return nil, fmt.Errorf("list node %d: nil cell", i)
		}
		if c.IsEmpty() {
			return items, nil
		}
		if len(c.refs) == 0 {
			return nil, fmt.Errorf("list node %d: missing next reference", i)
		}
		items = append(items, &Cell{
			data: c.data,
			refs: c.refs[1:],
		})
		c = c.refs[0]
	}
}
