// Package protoio holds the protobuf wire primitives used by the hand written
// codecs: varints, fixed width integers, field encoding and length delimited
// message streams.
package protoio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/gogo/protobuf/proto"
	pool "github.com/libp2p/go-buffer-pool"
	"google.golang.org/protobuf/encoding/protowire"
)

type Writer interface {
	WriteMsg(proto.Message) (int, error)
}

type WriteCloser interface {
	Writer
	io.Closer
}

type Reader interface {
	ReadMsg(msg proto.Message) (int, error)
}

type ReadCloser interface {
	Reader
	io.Closer
}

type marshaler interface {
	Marshal() ([]byte, error)
}

// NewDelimitedWriter writes each message prefixed by its varint length.
func NewDelimitedWriter(w io.Writer) WriteCloser {
	return &varintWriter{w: w}
}

type varintWriter struct {
	w io.Writer
}

func (w *varintWriter) WriteMsg(msg proto.Message) (int, error) {
	if m, ok := msg.(Appender); ok {
		n := m.Size()
		buf := pool.Get(n + MaxVarintLen64)
		defer pool.Put(buf)

		out := protowire.AppendVarint(buf[:0], uint64(n))
		out = m.AppendProto(out)
		_, err := w.w.Write(out)
		return len(out), err
	}

	var (
		data []byte
		err  error
	)
	if m, ok := msg.(marshaler); ok {
		data, err = m.Marshal()
	} else {
		data, err = proto.Marshal(msg)
	}
	if err != nil {
		return 0, err
	}
	lenBuf := protowire.AppendVarint(make([]byte, 0, MaxVarintLen64), uint64(len(data)))
	if _, err := w.w.Write(lenBuf); err != nil {
		return 0, err
	}
	_, err = w.w.Write(data)
	return len(lenBuf) + len(data), err
}

func (w *varintWriter) Close() error {
	if closer, ok := w.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// MarshalDelimited returns the length prefixed encoding of msg.
func MarshalDelimited(msg proto.Message) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := NewDelimitedWriter(&buf).WriteMsg(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewDelimitedReader reads varint length prefixed messages, refusing any
// message longer than maxSize.
func NewDelimitedReader(r io.Reader, maxSize int) ReadCloser {
	var closer io.Closer
	if c, ok := r.(io.Closer); ok {
		closer = c
	}
	return &varintReader{r: bufio.NewReader(r), maxSize: maxSize, closer: closer}
}

type varintReader struct {
	r       *bufio.Reader
	buf     []byte
	maxSize int
	closer  io.Closer
}

func (r *varintReader) ReadMsg(msg proto.Message) (int, error) {
	var lenBuf []byte
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return len(lenBuf), err
		}
		lenBuf = append(lenBuf, b)
		if b < 0x80 {
			break
		}
		if len(lenBuf) >= MaxVarintLen64 {
			return len(lenBuf), ErrEncoding{Field: "length prefix", Reason: "varint overflow"}
		}
	}
	length, _, err := DecodeVarint(lenBuf)
	if err != nil {
		return len(lenBuf), err
	}
	if length > uint64(r.maxSize) {
		return len(lenBuf), fmt.Errorf("message exceeds max size (%v > %v)", length, r.maxSize)
	}

	if len(r.buf) < int(length) {
		r.buf = make([]byte, length)
	}
	buf := r.buf[:length]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return len(lenBuf), err
	}
	return len(lenBuf) + int(length), proto.Unmarshal(buf, msg)
}

func (r *varintReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// UnmarshalDelimited decodes a single length prefixed message from data.
func UnmarshalDelimited(data []byte, msg proto.Message) error {
	_, err := NewDelimitedReader(bytes.NewReader(data), len(data)).ReadMsg(msg)
	return err
}
