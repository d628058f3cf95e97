package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/ed25519"
	"github.com/oraichain/tonbridge-core/crypto/encoding"
	"github.com/oraichain/tonbridge-core/crypto/secp256k1"
)

// The JSON forms below are the ones served by the Tendermint RPC: 64-bit
// integers as strings, keys as {type, value} with base64 values. Numbers are
// accepted as well since cosmjs re-serialises them that way.

type jsonInt64 int64

func (i jsonInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(i), 10))
}

func (i *jsonInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*i = jsonInt64(v)
	return nil
}

var pubKeyJSONNames = map[string]string{
	ed25519.KeyType:   "tendermint/PubKeyEd25519",
	secp256k1.KeyType: "tendermint/PubKeySecp256k1",
}

type pubKeyJSON struct {
	Type  string `json:"type"`
	Value []byte `json:"value"`
}

func pubKeyToJSON(pk crypto.PubKey) *pubKeyJSON {
	if pk == nil {
		return nil
	}
	return &pubKeyJSON{Type: pubKeyJSONNames[pk.Type()], Value: pk.Bytes()}
}

type validatorJSON struct {
	Address          Address     `json:"address"`
	PubKey           *pubKeyJSON `json:"pub_key"`
	VotingPower      jsonInt64   `json:"voting_power"`
	ProposerPriority jsonInt64   `json:"proposer_priority"`
}

func (v Validator) MarshalJSON() ([]byte, error) {
	return json.Marshal(validatorJSON{
		Address:          v.Address,
		PubKey:           pubKeyToJSON(v.PubKey),
		VotingPower:      jsonInt64(v.VotingPower),
		ProposerPriority: jsonInt64(v.ProposerPriority),
	})
}

// UnmarshalJSON fills in the address from the key when RPC leaves it out.
func (v *Validator) UnmarshalJSON(data []byte) error {
	var vj validatorJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		return err
	}
	if vj.PubKey == nil {
		return fmt.Errorf("validator %v has no pub_key", vj.Address)
	}
	pk, err := encoding.PubKeyFromTypeAndBytes(vj.PubKey.Type, vj.PubKey.Value)
	if err != nil {
		return err
	}
	*v = Validator{
		Address:          vj.Address,
		PubKey:           pk,
		VotingPower:      int64(vj.VotingPower),
		ProposerPriority: int64(vj.ProposerPriority),
	}
	if len(v.Address) == 0 {
		v.Address = pk.Address()
	}
	return nil
}

// ValidatorsResponse is the result of the RPC /validators endpoint.
type ValidatorsResponse struct {
	BlockHeight jsonInt64    `json:"block_height"`
	Validators  []*Validator `json:"validators"`
	Count       jsonInt64    `json:"count"`
	Total       jsonInt64    `json:"total"`
}

// ValidatorSet validates the page and returns it as a set. A partial page
// (count < total) is refused, since its hash cannot match any header.
func (r ValidatorsResponse) ValidatorSet() (*ValidatorSet, error) {
	if r.Total != 0 && len(r.Validators) != int(r.Total) {
		return nil, fmt.Errorf("validators page holds %d of %d validators", len(r.Validators), r.Total)
	}
	return NewValidatorSet(r.Validators)
}

// Height returns the height the validators were queried at.
func (r ValidatorsResponse) Height() int64 { return int64(r.BlockHeight) }
