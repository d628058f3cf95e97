package tx

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Any is google.protobuf.Any: a type URL and the encoded message.
type Any struct {
	TypeURL string `json:"type_url"`
	Value   []byte `json:"value"`
}

var _ protoio.Appender = (*Any)(nil)

func (a *Any) Size() int {
	return protoio.SizeStringField(1, a.TypeURL) + protoio.SizeBytesField(2, a.Value)
}

func (a *Any) AppendProto(b []byte) []byte {
	b = protoio.AppendStringField(b, 1, a.TypeURL)
	return protoio.AppendBytesField(b, 2, a.Value)
}

func (a *Any) Marshal() ([]byte, error) { return protoio.Marshal(a), nil }

func (a *Any) Unmarshal(bz []byte) error {
	*a = Any{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("any.type_url", protowire.BytesType); err != nil {
				return err
			}
			a.TypeURL = string(f.Bytes)
		case 2:
			if err := f.Expect("any.value", protowire.BytesType); err != nil {
				return err
			}
			a.Value = f.CopyBytes()
		}
		return nil
	})
}

// anys is a repeated Any field.
type anys []*Any

func (as anys) size(num protowire.Number) int {
	n := 0
	for _, a := range as {
		n += protoio.SizeMessageField(num, a)
	}
	return n
}

func (as anys) appendField(b []byte, num protowire.Number) []byte {
	for _, a := range as {
		b = protoio.AppendMessageField(b, num, a)
	}
	return b
}

func decodeAny(field string, f protoio.Field) (*Any, error) {
	if err := f.Expect(field, protowire.BytesType); err != nil {
		return nil, err
	}
	a := new(Any)
	if err := a.Unmarshal(f.Bytes); err != nil {
		return nil, err
	}
	return a, nil
}
