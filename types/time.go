package types

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Timestamp is a time.Time encoded as google.protobuf.Timestamp. The zero
// time.Time (0001-01-01T00:00:00Z) is a valid timestamp: absent commit
// signatures carry it.
type Timestamp time.Time

var _ protoio.Appender = Timestamp{}

func (t Timestamp) parts() (int64, int32) {
	tt := time.Time(t)
	return tt.Unix(), int32(tt.Nanosecond())
}

func (t Timestamp) Size() int {
	secs, nanos := t.parts()
	return protoio.SizeInt64Field(1, secs) + protoio.SizeInt64Field(2, int64(nanos))
}

func (t Timestamp) AppendProto(b []byte) []byte {
	secs, nanos := t.parts()
	b = protoio.AppendInt64Field(b, 1, secs)
	return protoio.AppendInt64Field(b, 2, int64(nanos))
}

// TimestampFromProto decodes a google.protobuf.Timestamp.
func TimestampFromProto(bz []byte) (time.Time, error) {
	var secs, nanos int64
	err := protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("timestamp.seconds", protowire.VarintType); err != nil {
				return err
			}
			secs = int64(f.Uint)
		case 2:
			if err := f.Expect("timestamp.nanos", protowire.VarintType); err != nil {
				return err
			}
			nanos = int64(int32(f.Uint))
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if nanos < 0 || nanos >= int64(time.Second) {
		return time.Time{}, protoio.ErrEncoding{Field: "timestamp.nanos", Reason: "out of range"}
	}
	return time.Unix(secs, nanos).UTC(), nil
}

// Canonical returns UTC time with monotonic readings stripped.
func Canonical(t time.Time) time.Time {
	return t.Round(0).UTC()
}
