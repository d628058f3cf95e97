package cell

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Slice reads the data and references of a cell in order. The first error
// sticks and is returned by Err and End.
type Slice struct {
	c   *Cell
	off int
	ref int
	err error
}

func (s *Slice) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 || s.off+n > len(s.c.data) {
		s.err = ErrUnderflow{Want: n, Have: len(s.c.data) - s.off}
		return nil
	}
	p := s.c.data[s.off : s.off+n]
	s.off += n
	return p
}

func (s *Slice) LoadUint8() uint8 {
	if p := s.take(1); p != nil {
		return p[0]
	}
	return 0
}

func (s *Slice) LoadUint16() uint16 {
	if p := s.take(2); p != nil {
		return binary.BigEndian.Uint16(p)
	}
	return 0
}

func (s *Slice) LoadUint32() uint32 {
	if p := s.take(4); p != nil {
		return binary.BigEndian.Uint32(p)
	}
	return 0
}

func (s *Slice) LoadUint64() uint64 {
	if p := s.take(8); p != nil {
		return binary.BigEndian.Uint64(p)
	}
	return 0
}

// LoadBytes returns a copy of the next n bytes.
func (s *Slice) LoadBytes(n int) []byte {
	if p := s.take(n); p != nil {
		return append([]byte(nil), p...)
	}
	return nil
}

// LoadTime reads a time stored by Builder.StoreTime.
func (s *Slice) LoadTime() time.Time {
	secs := s.LoadUint32()
	nanos := s.LoadUint32()
	if s.err == nil && nanos >= uint32(time.Second) {
		s.err = fmt.Errorf("nanoseconds %d out of range", nanos)
	}
	return time.Unix(int64(secs), int64(nanos)).UTC()
}

// LoadRest returns a copy of the unread data, nil if there is none.
func (s *Slice) LoadRest() []byte {
	if s.err != nil || s.off == len(s.c.data) {
		return nil
	}
	return s.LoadBytes(len(s.c.data) - s.off)
}

// LoadRef returns the next reference.
func (s *Slice) LoadRef() *Cell {
	if s.err != nil {
		return nil
	}
	if s.ref >= len(s.c.refs) {
		s.err = ErrUnderflow{Want: 1, Have: 0, Refs: true}
		return nil
	}
	r := s.c.refs[s.ref]
	s.ref++
	return r
}

// RemainingBytes returns the number of unread data bytes.
func (s *Slice) RemainingBytes() int {
	return len(s.c.data) - s.off
}

// RemainingRefs returns the number of unread references.
func (s *Slice) RemainingRefs() int {
	return len(s.c.refs) - s.ref
}

// Err returns the first error the slice ran into.
func (s *Slice) Err() error {
	return s.err
}

// End returns an error if reading failed or left data or references
// unread.
func (s *Slice) End() error {
	if s.err != nil {
		return s.err
	}
	if s.RemainingBytes() != 0 || s.RemainingRefs() != 0 {
		return fmt.Errorf("cell has %d unread bytes and %d unread refs", s.RemainingBytes(), s.RemainingRefs())
	}
	return nil
}
