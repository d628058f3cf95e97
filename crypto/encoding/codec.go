package encoding

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/ed25519"
	"github.com/oraichain/tonbridge-core/crypto/secp256k1"
	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Field numbers of the tendermint.crypto.PublicKey oneof.
const (
	fieldEd25519   protowire.Number = 1
	fieldSecp256k1 protowire.Number = 2
)

// PubKeyFromTypeAndBytes builds a key from the type names used by RPC JSON
// ("tendermint/PubKeyEd25519") and by cosmjs ("ed25519").
func PubKeyFromTypeAndBytes(keyType string, bz []byte) (crypto.PubKey, error) {
	switch keyType {
	case ed25519.KeyType, "tendermint/PubKeyEd25519":
		if len(bz) != ed25519.PubKeySize {
			return nil, fmt.Errorf("invalid size for PubKeyEd25519. Got %d, expected %d",
				len(bz), ed25519.PubKeySize)
		}
		pk := make(ed25519.PubKey, ed25519.PubKeySize)
		copy(pk, bz)
		return pk, nil
	case secp256k1.KeyType, "tendermint/PubKeySecp256k1":
		if len(bz) != secp256k1.PubKeySize {
			return nil, fmt.Errorf("invalid size for PubKeySecp256k1. Got %d, expected %d",
				len(bz), secp256k1.PubKeySize)
		}
		pk := make(secp256k1.PubKey, secp256k1.PubKeySize)
		copy(pk, bz)
		return pk, nil
	default:
		return nil, fmt.Errorf("key type %q is not supported", keyType)
	}
}

// ProtoPubKey wraps a PubKey so it encodes as tendermint.crypto.PublicKey.
type ProtoPubKey struct {
	crypto.PubKey
}

var _ protoio.Appender = ProtoPubKey{}

func (k ProtoPubKey) field() protowire.Number {
	if k.PubKey.Type() == secp256k1.KeyType {
		return fieldSecp256k1
	}
	return fieldEd25519
}

func (k ProtoPubKey) Size() int {
	return protowire.SizeTag(k.field()) + protowire.SizeBytes(len(k.PubKey.Bytes()))
}

// AppendProto always writes the oneof member, even for an empty key.
func (k ProtoPubKey) AppendProto(b []byte) []byte {
	b = protowire.AppendTag(b, k.field(), protowire.BytesType)
	return protowire.AppendBytes(b, k.PubKey.Bytes())
}

// PubKeyToProto encodes k as tendermint.crypto.PublicKey.
func PubKeyToProto(k crypto.PubKey) ([]byte, error) {
	switch k.(type) {
	case ed25519.PubKey, secp256k1.PubKey:
		return protoio.Marshal(ProtoPubKey{k}), nil
	default:
		return nil, fmt.Errorf("toproto: key type %v is not supported", k)
	}
}

// PubKeyFromProto decodes a tendermint.crypto.PublicKey.
func PubKeyFromProto(bz []byte) (crypto.PubKey, error) {
	var pk crypto.PubKey
	err := protoio.ReadFields(bz, func(f protoio.Field) error {
		if err := f.Expect("public_key", protowire.BytesType); err != nil {
			return err
		}
		var err error
		switch f.Num {
		case fieldEd25519:
			pk, err = PubKeyFromTypeAndBytes(ed25519.KeyType, f.Bytes)
		case fieldSecp256k1:
			pk, err = PubKeyFromTypeAndBytes(secp256k1.KeyType, f.Bytes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if pk == nil {
		return nil, errors.New("fromproto: key is nil")
	}
	return pk, nil
}
