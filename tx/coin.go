package tx

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Coin is cosmos.base.v1beta1.Coin. Amount stays a decimal string, the way
// the SDK serialises its Int.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

var _ protoio.Appender = Coin{}

func (c Coin) Size() int {
	return protoio.SizeStringField(1, c.Denom) + protoio.SizeStringField(2, c.Amount)
}

func (c Coin) AppendProto(b []byte) []byte {
	b = protoio.AppendStringField(b, 1, c.Denom)
	return protoio.AppendStringField(b, 2, c.Amount)
}

func (c Coin) Marshal() ([]byte, error) { return protoio.Marshal(c), nil }

func (c *Coin) Unmarshal(bz []byte) error {
	*c = Coin{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("coin.denom", protowire.BytesType); err != nil {
				return err
			}
			c.Denom = string(f.Bytes)
		case 2:
			if err := f.Expect("coin.amount", protowire.BytesType); err != nil {
				return err
			}
			c.Amount = string(f.Bytes)
		}
		return nil
	})
}

func (c Coin) String() string { return fmt.Sprintf("%s%s", c.Amount, c.Denom) }

// Coins is a repeated Coin field.
type Coins []Coin

func (cs Coins) size(num protowire.Number) int {
	n := 0
	for _, c := range cs {
		n += protoio.SizeMessageField(num, c)
	}
	return n
}

func (cs Coins) appendField(b []byte, num protowire.Number) []byte {
	for _, c := range cs {
		b = protoio.AppendMessageField(b, num, c)
	}
	return b
}

func (cs *Coins) decodeAppend(field string, f protoio.Field) error {
	if err := f.Expect(field, protowire.BytesType); err != nil {
		return err
	}
	var c Coin
	if err := c.Unmarshal(f.Bytes); err != nil {
		return err
	}
	*cs = append(*cs, c)
	return nil
}

// Fee is cosmos.tx.v1beta1.Fee.
type Fee struct {
	Amount   Coins  `json:"amount"`
	GasLimit uint64 `json:"gas_limit,string"`
	Payer    string `json:"payer"`
	Granter  string `json:"granter"`
}

var _ protoio.Appender = (*Fee)(nil)

func (fee *Fee) Size() int {
	return fee.Amount.size(1) +
		protoio.SizeVarintField(2, fee.GasLimit) +
		protoio.SizeStringField(3, fee.Payer) +
		protoio.SizeStringField(4, fee.Granter)
}

func (fee *Fee) AppendProto(b []byte) []byte {
	b = fee.Amount.appendField(b, 1)
	b = protoio.AppendVarintField(b, 2, fee.GasLimit)
	b = protoio.AppendStringField(b, 3, fee.Payer)
	return protoio.AppendStringField(b, 4, fee.Granter)
}

func (fee *Fee) Marshal() ([]byte, error) { return protoio.Marshal(fee), nil }

func (fee *Fee) Unmarshal(bz []byte) error {
	*fee = Fee{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			return fee.Amount.decodeAppend("fee.amount", f)
		case 2:
			if err := f.Expect("fee.gas_limit", protowire.VarintType); err != nil {
				return err
			}
			fee.GasLimit = f.Uint
		case 3:
			if err := f.Expect("fee.payer", protowire.BytesType); err != nil {
				return err
			}
			fee.Payer = string(f.Bytes)
		case 4:
			if err := f.Expect("fee.granter", protowire.BytesType); err != nil {
				return err
			}
			fee.Granter = string(f.Bytes)
		}
		return nil
	})
}

// Tip is cosmos.tx.v1beta1.Tip.
type Tip struct {
	Amount Coins  `json:"amount"`
	Tipper string `json:"tipper"`
}

var _ protoio.Appender = (*Tip)(nil)

func (tip *Tip) Size() int {
	return tip.Amount.size(1) + protoio.SizeStringField(2, tip.Tipper)
}

func (tip *Tip) AppendProto(b []byte) []byte {
	b = tip.Amount.appendField(b, 1)
	return protoio.AppendStringField(b, 2, tip.Tipper)
}

func (tip *Tip) Marshal() ([]byte, error) { return protoio.Marshal(tip), nil }

func (tip *Tip) Unmarshal(bz []byte) error {
	*tip = Tip{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			return tip.Amount.decodeAppend("tip.amount", f)
		case 2:
			if err := f.Expect("tip.tipper", protowire.BytesType); err != nil {
				return err
			}
			tip.Tipper = string(f.Bytes)
		}
		return nil
	})
}
