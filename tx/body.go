package tx

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// TypeURLMsgExecuteContract is the only message type bridged transactions
// may carry.
const TypeURLMsgExecuteContract = "/cosmwasm.wasm.v1.MsgExecuteContract"

// TxBody is cosmos.tx.v1beta1.TxBody.
type TxBody struct {
	Messages                    []*Any `json:"messages"`
	Memo                        string `json:"memo"`
	TimeoutHeight               uint64 `json:"timeout_height,string"`
	ExtensionOptions            []*Any `json:"extension_options"`
	NonCriticalExtensionOptions []*Any `json:"non_critical_extension_options"`
}

var _ protoio.Appender = (*TxBody)(nil)

func (body *TxBody) Size() int {
	return anys(body.Messages).size(1) +
		protoio.SizeStringField(2, body.Memo) +
		protoio.SizeVarintField(3, body.TimeoutHeight) +
		anys(body.ExtensionOptions).size(1023) +
		anys(body.NonCriticalExtensionOptions).size(2047)
}

func (body *TxBody) AppendProto(b []byte) []byte {
	b = anys(body.Messages).appendField(b, 1)
	b = protoio.AppendStringField(b, 2, body.Memo)
	b = protoio.AppendVarintField(b, 3, body.TimeoutHeight)
	b = anys(body.ExtensionOptions).appendField(b, 1023)
	return anys(body.NonCriticalExtensionOptions).appendField(b, 2047)
}

func (body *TxBody) Marshal() ([]byte, error) { return protoio.Marshal(body), nil }

func (body *TxBody) Unmarshal(bz []byte) error {
	*body = TxBody{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			a, err := decodeAny("tx_body.messages", f)
			if err != nil {
				return err
			}
			body.Messages = append(body.Messages, a)
		case 2:
			if err := f.Expect("tx_body.memo", protowire.BytesType); err != nil {
				return err
			}
			body.Memo = string(f.Bytes)
		case 3:
			if err := f.Expect("tx_body.timeout_height", protowire.VarintType); err != nil {
				return err
			}
			body.TimeoutHeight = f.Uint
		case 1023:
			a, err := decodeAny("tx_body.extension_options", f)
			if err != nil {
				return err
			}
			body.ExtensionOptions = append(body.ExtensionOptions, a)
		case 2047:
			a, err := decodeAny("tx_body.non_critical_extension_options", f)
			if err != nil {
				return err
			}
			body.NonCriticalExtensionOptions = append(body.NonCriticalExtensionOptions, a)
		}
		return nil
	})
}

// MsgExecuteContract is cosmwasm.wasm.v1.MsgExecuteContract.
type MsgExecuteContract struct {
	Sender   string `json:"sender"`
	Contract string `json:"contract"`
	Msg      []byte `json:"msg"`
	Funds    Coins  `json:"funds"`
}

var _ protoio.Appender = (*MsgExecuteContract)(nil)

func (m *MsgExecuteContract) Size() int {
	return protoio.SizeStringField(1, m.Sender) +
		protoio.SizeStringField(2, m.Contract) +
		protoio.SizeBytesField(3, m.Msg) +
		m.Funds.size(5)
}

func (m *MsgExecuteContract) AppendProto(b []byte) []byte {
	b = protoio.AppendStringField(b, 1, m.Sender)
	b = protoio.AppendStringField(b, 2, m.Contract)
	b = protoio.AppendBytesField(b, 3, m.Msg)
	return m.Funds.appendField(b, 5)
}

func (m *MsgExecuteContract) Marshal() ([]byte, error) { return protoio.Marshal(m), nil }

func (m *MsgExecuteContract) Unmarshal(bz []byte) error {
	*m = MsgExecuteContract{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("msg_execute_contract.sender", protowire.BytesType); err != nil {
				return err
			}
			m.Sender = string(f.Bytes)
		case 2:
			if err := f.Expect("msg_execute_contract.contract", protowire.BytesType); err != nil {
				return err
			}
			m.Contract = string(f.Bytes)
		case 3:
			if err := f.Expect("msg_execute_contract.msg", protowire.BytesType); err != nil {
				return err
			}
			m.Msg = f.CopyBytes()
		case 5:
			return m.Funds.decodeAppend("msg_execute_contract.funds", f)
		}
		return nil
	})
}

// ToAny wraps m with its type URL.
func (m *MsgExecuteContract) ToAny() *Any {
	return &Any{TypeURL: TypeURLMsgExecuteContract, Value: protoio.Marshal(m)}
}

// WasmBody is a TxBody whose messages are all decoded MsgExecuteContract.
type WasmBody struct {
	Messages      []*MsgExecuteContract
	Memo          string
	TimeoutHeight uint64
}

// DecodeWasmBody decodes the messages of body. Any message with a type URL
// other than TypeURLMsgExecuteContract fails with ErrUnsupportedTypeURL.
func DecodeWasmBody(body *TxBody) (*WasmBody, error) {
	wb := &WasmBody{
		Messages:      make([]*MsgExecuteContract, 0, len(body.Messages)),
		Memo:          body.Memo,
		TimeoutHeight: body.TimeoutHeight,
	}
	for _, a := range body.Messages {
		if a.TypeURL != TypeURLMsgExecuteContract {
			return nil, ErrUnsupportedTypeURL{TypeURL: a.TypeURL}
		}
		m := new(MsgExecuteContract)
		if err := m.Unmarshal(a.Value); err != nil {
			return nil, err
		}
		wb.Messages = append(wb.Messages, m)
	}
	return wb, nil
}

// TxBody re-encodes wb into a TxBody.
func (wb *WasmBody) TxBody() *TxBody {
	body := &TxBody{Memo: wb.Memo, TimeoutHeight: wb.TimeoutHeight}
	for _, m := range wb.Messages {
		body.Messages = append(body.Messages, m.ToAny())
	}
	return body
}
