package tx

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/crypto"
	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// TxRaw is cosmos.tx.v1beta1.TxRaw, the form in which transactions are
// stored in a block and hashed.
type TxRaw struct {
	BodyBytes     []byte   `json:"body_bytes"`
	AuthInfoBytes []byte   `json:"auth_info_bytes"`
	Signatures    [][]byte `json:"signatures"`
}

var _ protoio.Appender = (*TxRaw)(nil)

func (raw *TxRaw) Size() int {
	n := protoio.SizeBytesField(1, raw.BodyBytes) + protoio.SizeBytesField(2, raw.AuthInfoBytes)
	for _, sig := range raw.Signatures {
		n += protowire.SizeTag(3) + protowire.SizeBytes(len(sig))
	}
	return n
}

// AppendProto writes every signature, empty ones included, since repeated
// bytes keep their elements.
func (raw *TxRaw) AppendProto(b []byte) []byte {
	b = protoio.AppendBytesField(b, 1, raw.BodyBytes)
	b = protoio.AppendBytesField(b, 2, raw.AuthInfoBytes)
	for _, sig := range raw.Signatures {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, sig)
	}
	return b
}

func (raw *TxRaw) Marshal() ([]byte, error) { return protoio.Marshal(raw), nil }

func (raw *TxRaw) Unmarshal(bz []byte) error {
	*raw = TxRaw{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("tx_raw.body_bytes", protowire.BytesType); err != nil {
				return err
			}
			raw.BodyBytes = f.CopyBytes()
		case 2:
			if err := f.Expect("tx_raw.auth_info_bytes", protowire.BytesType); err != nil {
				return err
			}
			raw.AuthInfoBytes = f.CopyBytes()
		case 3:
			if err := f.Expect("tx_raw.signatures", protowire.BytesType); err != nil {
				return err
			}
			raw.Signatures = append(raw.Signatures, f.CopyBytes())
		}
		return nil
	})
}

// Hash returns the SHA-256 of the encoded transaction.
func (raw *TxRaw) Hash() tmbytes.HexBytes {
	return Hash(protoio.Marshal(raw))
}

// Hash returns the SHA-256 of raw transaction bytes, which is the
// transaction hash reported by the chain.
func Hash(raw []byte) tmbytes.HexBytes {
	return crypto.Checksum(raw)
}

// Decoded is a TxRaw with its body and auth info unpacked.
type Decoded struct {
	Body       *TxBody
	AuthInfo   *AuthInfo
	Signatures [][]byte
}

// Decode unpacks raw transaction bytes.
func Decode(bz []byte) (*Decoded, error) {
	if len(bz) == 0 {
		return nil, ErrEmptyTx
	}
	var raw TxRaw
	if err := raw.Unmarshal(bz); err != nil {
		return nil, fmt.Errorf("tx raw: %w", err)
	}
	body := new(TxBody)
	if err := body.Unmarshal(raw.BodyBytes); err != nil {
		return nil, fmt.Errorf("tx body: %w", err)
	}
	authInfo := new(AuthInfo)
	if err := authInfo.Unmarshal(raw.AuthInfoBytes); err != nil {
		return nil, fmt.Errorf("auth info: %w", err)
	}
	return &Decoded{Body: body, AuthInfo: authInfo, Signatures: raw.Signatures}, nil
}

// Raw re-encodes d. Body and auth info are encoded canonically, so the
// result equals the input of Decode only for canonically encoded
// transactions.
func (d *Decoded) Raw() *TxRaw {
	return &TxRaw{
		BodyBytes:     protoio.Marshal(d.Body),
		AuthInfoBytes: protoio.Marshal(d.AuthInfo),
		Signatures:    d.Signatures,
	}
}
