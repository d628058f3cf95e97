package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/encoding"
	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Validator holds the public key and voting power of a consensus validator.
// ProposerPriority is carried for RPC round trips only; it is not part of
// the validator set hash.
type Validator struct {
	Address     Address       `json:"address"`
	PubKey      crypto.PubKey `json:"pub_key"`
	VotingPower int64         `json:"voting_power"`

	ProposerPriority int64 `json:"proposer_priority"`
}

// NewValidator returns a new validator with the given pubkey and voting power.
func NewValidator(pubKey crypto.PubKey, votingPower int64) *Validator {
	return &Validator{
		Address:     pubKey.Address(),
		PubKey:      pubKey,
		VotingPower: votingPower,
	}
}

// ValidateBasic performs basic validation.
func (v *Validator) ValidateBasic() error {
	if v == nil {
		return errors.New("nil validator")
	}
	if v.PubKey == nil {
		return errors.New("validator does not have a public key")
	}

	if v.VotingPower < 0 {
		return errors.New("validator has negative voting power")
	}

	addr := v.PubKey.Address()
	if !bytes.Equal(v.Address, addr) {
		return fmt.Errorf("validator address is incorrectly derived from pubkey. Exp: %v, got %v", addr, v.Address)
	}

	return nil
}

// Copy creates a new copy of the validator so we can mutate ProposerPriority.
// Panics if the validator is nil.
func (v *Validator) Copy() *Validator {
	vCopy := *v
	return &vCopy
}

// String returns a string representation of String.
//
// 1. address
// 2. public key
// 3. voting power
// 4. proposer priority
func (v *Validator) String() string {
	if v == nil {
		return "nil-Validator"
	}
	return fmt.Sprintf("Validator{%v %v VP:%v A:%v}",
		v.Address,
		v.PubKey,
		v.VotingPower,
		v.ProposerPriority)
}

// simpleValidator is tendermint.types.SimpleValidator, the leaf encoding of
// the validator set hash.
type simpleValidator struct {
	pubKey      encoding.ProtoPubKey
	votingPower int64
}

func (sv simpleValidator) Size() int {
	return protoio.SizeMessageField(1, sv.pubKey) + protoio.SizeInt64Field(2, sv.votingPower)
}

func (sv simpleValidator) AppendProto(b []byte) []byte {
	b = protoio.AppendMessageField(b, 1, sv.pubKey)
	return protoio.AppendInt64Field(b, 2, sv.votingPower)
}

// Bytes computes the unique encoding of a validator with a given voting power.
// These are the bytes that gets hashed in consensus. It excludes address
// as its redundant with the pubkey. This also excludes ProposerPriority
// which changes every round.
func (v *Validator) Bytes() []byte {
	return protoio.Marshal(simpleValidator{
		pubKey:      encoding.ProtoPubKey{PubKey: v.PubKey},
		votingPower: v.VotingPower,
	})
}
