package types

import (
	gogotypes "github.com/gogo/protobuf/types"

	"github.com/oraichain/tonbridge-core/libs/bytes"
)

// cdcEncode returns nil if the input is nil, otherwise returns
// proto.Marshal(<type>Value{Value: item})
func cdcEncode(item interface{}) []byte {
	switch item := item.(type) {
	case string:
		if item == "" {
			return nil
		}
		i := gogotypes.StringValue{Value: item}
		bz, err := i.Marshal()
		if err != nil {
			return nil
		}
		return bz
	case int64:
		if item == 0 {
			return nil
		}
		i := gogotypes.Int64Value{Value: item}
		bz, err := i.Marshal()
		if err != nil {
			return nil
		}
		return bz
	case bytes.HexBytes:
		if len(item) == 0 {
			return nil
		}
		i := gogotypes.BytesValue{Value: item}
		bz, err := i.Marshal()
		if err != nil {
			return nil
		}
		return bz
	default:
		return nil
	}
}
