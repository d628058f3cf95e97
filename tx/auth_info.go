package tx

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// SignMode is cosmos.tx.signing.v1beta1.SignMode.
type SignMode int32

const (
	SignModeUnspecified     SignMode = 0
	SignModeDirect          SignMode = 1
	SignModeTextual         SignMode = 2
	SignModeDirectAux       SignMode = 3
	SignModeLegacyAminoJSON SignMode = 127
	SignModeEIP191          SignMode = 191
)

func (m SignMode) String() string {
	switch m {
	case SignModeUnspecified:
		return "SIGN_MODE_UNSPECIFIED"
	case SignModeDirect:
		return "SIGN_MODE_DIRECT"
	case SignModeTextual:
		return "SIGN_MODE_TEXTUAL"
	case SignModeDirectAux:
		return "SIGN_MODE_DIRECT_AUX"
	case SignModeLegacyAminoJSON:
		return "SIGN_MODE_LEGACY_AMINO_JSON"
	case SignModeEIP191:
		return "SIGN_MODE_EIP_191"
	default:
		return fmt.Sprintf("SignMode(%d)", int32(m))
	}
}

// modeInfoSingle is the body of the ModeInfo.single oneof member.
type modeInfoSingle struct{ mode SignMode }

func (s modeInfoSingle) Size() int {
	return protoio.SizeVarintField(1, uint64(s.mode))
}

func (s modeInfoSingle) AppendProto(b []byte) []byte {
	return protoio.AppendVarintField(b, 1, uint64(s.mode))
}

// ModeInfo is cosmos.tx.v1beta1.ModeInfo restricted to single signers.
// Multisig mode info is refused on decode.
type ModeInfo struct {
	Mode SignMode `json:"mode"`
}

var _ protoio.Appender = (*ModeInfo)(nil)

func (mi *ModeInfo) Size() int {
	return protoio.SizeMessageField(1, modeInfoSingle{mi.Mode})
}

// AppendProto always writes the single member, even for SIGN_MODE_UNSPECIFIED.
func (mi *ModeInfo) AppendProto(b []byte) []byte {
	return protoio.AppendMessageField(b, 1, modeInfoSingle{mi.Mode})
}

func (mi *ModeInfo) Marshal() ([]byte, error) { return protoio.Marshal(mi), nil }

func (mi *ModeInfo) Unmarshal(bz []byte) error {
	*mi = ModeInfo{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("mode_info.single", protowire.BytesType); err != nil {
				return err
			}
			return protoio.ReadFields(f.Bytes, func(g protoio.Field) error {
				if g.Num != 1 {
					return nil
				}
				if err := g.Expect("mode_info.single.mode", protowire.VarintType); err != nil {
					return err
				}
				mi.Mode = SignMode(int32(g.Uint))
				return nil
			})
		case 2:
			return protoio.ErrEncoding{Field: "mode_info.multi", Reason: "multisig signers are not supported"}
		}
		return nil
	})
}

// SignerInfo is cosmos.tx.v1beta1.SignerInfo.
type SignerInfo struct {
	PublicKey *Any      `json:"public_key"`
	ModeInfo  *ModeInfo `json:"mode_info"`
	Sequence  uint64    `json:"sequence,string"`
}

var _ protoio.Appender = (*SignerInfo)(nil)

func (si *SignerInfo) Size() int {
	n := protoio.SizeVarintField(3, si.Sequence)
	if si.PublicKey != nil {
		n += protoio.SizeMessageField(1, si.PublicKey)
	}
	if si.ModeInfo != nil {
		n += protoio.SizeMessageField(2, si.ModeInfo)
	}
	return n
}

func (si *SignerInfo) AppendProto(b []byte) []byte {
	if si.PublicKey != nil {
		b = protoio.AppendMessageField(b, 1, si.PublicKey)
	}
	if si.ModeInfo != nil {
		b = protoio.AppendMessageField(b, 2, si.ModeInfo)
	}
	return protoio.AppendVarintField(b, 3, si.Sequence)
}

func (si *SignerInfo) Marshal() ([]byte, error) { return protoio.Marshal(si), nil }

func (si *SignerInfo) Unmarshal(bz []byte) error {
	*si = SignerInfo{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			a, err := decodeAny("signer_info.public_key", f)
			if err != nil {
				return err
			}
			si.PublicKey = a
		case 2:
			if err := f.Expect("signer_info.mode_info", protowire.BytesType); err != nil {
				return err
			}
			si.ModeInfo = new(ModeInfo)
			return si.ModeInfo.Unmarshal(f.Bytes)
		case 3:
			if err := f.Expect("signer_info.sequence", protowire.VarintType); err != nil {
				return err
			}
			si.Sequence = f.Uint
		}
		return nil
	})
}

// AuthInfo is cosmos.tx.v1beta1.AuthInfo.
type AuthInfo struct {
	SignerInfos []*SignerInfo `json:"signer_infos"`
	Fee         *Fee          `json:"fee"`
	Tip         *Tip          `json:"tip,omitempty"`
}

var _ protoio.Appender = (*AuthInfo)(nil)

func (ai *AuthInfo) Size() int {
	n := 0
	for _, si := range ai.SignerInfos {
		n += protoio.SizeMessageField(1, si)
	}
	if ai.Fee != nil {
		n += protoio.SizeMessageField(2, ai.Fee)
	}
	if ai.Tip != nil {
		n += protoio.SizeMessageField(3, ai.Tip)
	}
	return n
}

func (ai *AuthInfo) AppendProto(b []byte) []byte {
	for _, si := range ai.SignerInfos {
		b = protoio.AppendMessageField(b, 1, si)
	}
	if ai.Fee != nil {
		b = protoio.AppendMessageField(b, 2, ai.Fee)
	}
	if ai.Tip != nil {
		b = protoio.AppendMessageField(b, 3, ai.Tip)
	}
	return b
}

func (ai *AuthInfo) Marshal() ([]byte, error) { return protoio.Marshal(ai), nil }

func (ai *AuthInfo) Unmarshal(bz []byte) error {
	*ai = AuthInfo{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("auth_info.signer_infos", protowire.BytesType); err != nil {
				return err
			}
			si := new(SignerInfo)
			if err := si.Unmarshal(f.Bytes); err != nil {
				return err
			}
			ai.SignerInfos = append(ai.SignerInfos, si)
		case 2:
			if err := f.Expect("auth_info.fee", protowire.BytesType); err != nil {
				return err
			}
			ai.Fee = new(Fee)
			return ai.Fee.Unmarshal(f.Bytes)
		case 3:
			if err := f.Expect("auth_info.tip", protowire.BytesType); err != nil {
				return err
			}
			ai.Tip = new(Tip)
			return ai.Tip.Unmarshal(f.Bytes)
		}
		return nil
	})
}
