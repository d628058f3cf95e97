package protoio_test

import (
	"bytes"
	"io"
	"testing"

	gogotypes "github.com/gogo/protobuf/types"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

func TestDelimitedStream(t *testing.T) {
	msgs := []*gogotypes.Timestamp{
		{Seconds: 1714980881, Nanos: 886488234},
		{},
		{Seconds: -62135596800},
		{Seconds: 1, Nanos: 1},
	}

	buf := new(bytes.Buffer)
	w := protoio.NewDelimitedWriter(buf)
	for _, m := range msgs {
		bz, err := m.Marshal()
		require.NoError(t, err)
		n, err := w.WriteMsg(m)
		require.NoError(t, err)
		require.Equal(t, protowire.SizeBytes(len(bz)), n)
	}
	require.NoError(t, w.Close())

	r := protoio.NewDelimitedReader(buf, 1024)
	for _, exp := range msgs {
		got := new(gogotypes.Timestamp)
		_, err := r.ReadMsg(got)
		require.NoError(t, err)
		require.Equal(t, exp.Seconds, got.Seconds)
		require.Equal(t, exp.Nanos, got.Nanos)
	}
	_, err := r.ReadMsg(new(gogotypes.Timestamp))
	require.Equal(t, io.EOF, err)
	require.NoError(t, r.Close())
}

func TestDelimitedReaderMaxSize(t *testing.T) {
	bz, err := protoio.MarshalDelimited(&gogotypes.StringValue{Value: "a string longer than eight bytes"})
	require.NoError(t, err)

	_, err = protoio.NewDelimitedReader(bytes.NewReader(bz), 8).ReadMsg(new(gogotypes.StringValue))
	require.Error(t, err)

	got := new(gogotypes.StringValue)
	require.NoError(t, protoio.UnmarshalDelimited(bz, got))
	require.Equal(t, "a string longer than eight bytes", got.Value)
}

func TestReadFieldsSkipsUnknown(t *testing.T) {
	var bz []byte
	bz = protoio.AppendVarintField(bz, 1, 7)
	bz = protoio.AppendStringField(bz, 9, "ignored")
	bz = protoio.AppendSfixed64Field(bz, 2, -3)
	bz = protoio.AppendBytesField(bz, 3, []byte{0xaa})

	var seen []protowire.Number
	err := protoio.ReadFields(bz, func(f protoio.Field) error {
		seen = append(seen, f.Num)
		switch f.Num {
		case 1:
			require.NoError(t, f.Expect("a", protowire.VarintType))
			require.EqualValues(t, 7, f.Uint)
		case 2:
			require.NoError(t, f.Expect("b", protowire.Fixed64Type))
			require.EqualValues(t, -3, int64(f.Uint))
		case 3:
			require.Equal(t, []byte{0xaa}, f.CopyBytes())
			require.Error(t, f.Expect("c", protowire.VarintType))
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []protowire.Number{1, 9, 2, 3}, seen)

	require.Error(t, protoio.ReadFields([]byte{0x0a, 0x05, 0x01}, func(protoio.Field) error { return nil }))
}

func TestDefaultFieldsOmitted(t *testing.T) {
	require.Empty(t, protoio.AppendVarintField(nil, 1, 0))
	require.Empty(t, protoio.AppendSfixed64Field(nil, 1, 0))
	require.Empty(t, protoio.AppendBytesField(nil, 1, nil))
	require.Empty(t, protoio.AppendStringField(nil, 1, ""))
	require.Zero(t, protoio.SizeVarintField(1, 0))
	require.Zero(t, protoio.SizeStringField(1, ""))
	require.Equal(t, 2, protoio.SizeVarintField(1, 3))
}
