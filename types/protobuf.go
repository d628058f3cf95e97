package types

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oraichain/tonbridge-core/crypto/encoding"
	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Marshal and Unmarshal give the consensus records the usual generated
// message surface, backed by the hand written Appenders.

func (psh PartSetHeader) Marshal() ([]byte, error) { return protoio.Marshal(psh), nil }

func (psh *PartSetHeader) Unmarshal(bz []byte) error {
	*psh = PartSetHeader{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("part_set_header.total", protowire.VarintType); err != nil {
				return err
			}
			psh.Total = uint32(f.Uint)
		case 2:
			if err := f.Expect("part_set_header.hash", protowire.BytesType); err != nil {
				return err
			}
			psh.Hash = f.CopyBytes()
		}
		return nil
	})
}

func (blockID BlockID) Marshal() ([]byte, error) { return protoio.Marshal(blockID), nil }

func (blockID *BlockID) Unmarshal(bz []byte) error {
	*blockID = BlockID{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("block_id.hash", protowire.BytesType); err != nil {
				return err
			}
			blockID.Hash = f.CopyBytes()
		case 2:
			if err := f.Expect("block_id.part_set_header", protowire.BytesType); err != nil {
				return err
			}
			return blockID.PartSetHeader.Unmarshal(f.Bytes)
		}
		return nil
	})
}

// headerBytesFields lists the hash fields of tendermint.types.Header from
// field 6 on, in field order.
func (h *Header) headerBytesFields() []*[]byte {
	return []*[]byte{
		(*[]byte)(&h.LastCommitHash),
		(*[]byte)(&h.DataHash),
		(*[]byte)(&h.ValidatorsHash),
		(*[]byte)(&h.NextValidatorsHash),
		(*[]byte)(&h.ConsensusHash),
		(*[]byte)(&h.AppHash),
		(*[]byte)(&h.LastResultsHash),
		(*[]byte)(&h.EvidenceHash),
		(*[]byte)(&h.ProposerAddress),
	}
}

var _ protoio.Appender = (*Header)(nil)

func (h *Header) Size() int {
	n := protoio.SizeMessageField(1, h.Version) +
		protoio.SizeStringField(2, h.ChainID) +
		protoio.SizeInt64Field(3, h.Height) +
		protoio.SizeMessageField(4, Timestamp(h.Time)) +
		protoio.SizeMessageField(5, h.LastBlockID)
	for i, bz := range h.headerBytesFields() {
		n += protoio.SizeBytesField(protowire.Number(6+i), *bz)
	}
	return n
}

func (h *Header) AppendProto(b []byte) []byte {
	b = protoio.AppendMessageField(b, 1, h.Version)
	b = protoio.AppendStringField(b, 2, h.ChainID)
	b = protoio.AppendInt64Field(b, 3, h.Height)
	b = protoio.AppendMessageField(b, 4, Timestamp(h.Time))
	b = protoio.AppendMessageField(b, 5, h.LastBlockID)
	for i, bz := range h.headerBytesFields() {
		b = protoio.AppendBytesField(b, protowire.Number(6+i), *bz)
	}
	return b
}

// Marshal returns the tendermint.types.Header encoding of h.
func (h *Header) Marshal() ([]byte, error) { return protoio.Marshal(h), nil }

// Unmarshal decodes a tendermint.types.Header into h.
func (h *Header) Unmarshal(bz []byte) error {
	*h = Header{}
	fields := h.headerBytesFields()
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch {
		case f.Num == 1:
			if err := f.Expect("header.version", protowire.BytesType); err != nil {
				return err
			}
			return h.Version.Unmarshal(f.Bytes)
		case f.Num == 2:
			if err := f.Expect("header.chain_id", protowire.BytesType); err != nil {
				return err
			}
			h.ChainID = string(f.Bytes)
		case f.Num == 3:
			if err := f.Expect("header.height", protowire.VarintType); err != nil {
				return err
			}
			h.Height = int64(f.Uint)
		case f.Num == 4:
			if err := f.Expect("header.time", protowire.BytesType); err != nil {
				return err
			}
			t, err := TimestampFromProto(f.Bytes)
			if err != nil {
				return err
			}
			h.Time = t
		case f.Num == 5:
			if err := f.Expect("header.last_block_id", protowire.BytesType); err != nil {
				return err
			}
			return h.LastBlockID.Unmarshal(f.Bytes)
		case f.Num >= 6 && f.Num <= 14:
			if err := f.Expect("header hash", protowire.BytesType); err != nil {
				return err
			}
			*fields[f.Num-6] = f.CopyBytes()
		}
		return nil
	})
}

// Unmarshal decodes a tendermint.types.CanonicalVote.
func (cv *CanonicalVote) Unmarshal(bz []byte) error {
	*cv = CanonicalVote{}
	err := protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("canonical_vote.type", protowire.VarintType); err != nil {
				return err
			}
			cv.Type = SignedMsgType(f.Uint)
		case 2:
			if err := f.Expect("canonical_vote.height", protowire.Fixed64Type); err != nil {
				return err
			}
			cv.Height = int64(f.Uint)
		case 3:
			if err := f.Expect("canonical_vote.round", protowire.Fixed64Type); err != nil {
				return err
			}
			cv.Round = int64(f.Uint)
		case 4:
			if err := f.Expect("canonical_vote.block_id", protowire.BytesType); err != nil {
				return err
			}
			cv.BlockID = new(BlockID)
			return cv.BlockID.Unmarshal(f.Bytes)
		case 5:
			if err := f.Expect("canonical_vote.timestamp", protowire.BytesType); err != nil {
				return err
			}
			t, err := TimestampFromProto(f.Bytes)
			if err != nil {
				return err
			}
			cv.Timestamp = t
		case 6:
			if err := f.Expect("canonical_vote.chain_id", protowire.BytesType); err != nil {
				return err
			}
			cv.ChainID = string(f.Bytes)
		}
		return nil
	})
	return err
}

// protoValidator is tendermint.types.Validator.
type protoValidator struct{ *Validator }

func (v protoValidator) Size() int {
	return protoio.SizeBytesField(1, v.Address) +
		protoio.SizeMessageField(2, encoding.ProtoPubKey{PubKey: v.PubKey}) +
		protoio.SizeInt64Field(3, v.VotingPower) +
		protoio.SizeInt64Field(4, v.ProposerPriority)
}

func (v protoValidator) AppendProto(b []byte) []byte {
	b = protoio.AppendBytesField(b, 1, v.Address)
	b = protoio.AppendMessageField(b, 2, encoding.ProtoPubKey{PubKey: v.PubKey})
	b = protoio.AppendInt64Field(b, 3, v.VotingPower)
	return protoio.AppendInt64Field(b, 4, v.ProposerPriority)
}

func (v *Validator) Marshal() ([]byte, error) {
	if v.PubKey == nil {
		return nil, errors.New("validator has no public key")
	}
	return protoio.Marshal(protoValidator{v}), nil
}

func (v *Validator) Unmarshal(bz []byte) error {
	*v = Validator{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			if err := f.Expect("validator.address", protowire.BytesType); err != nil {
				return err
			}
			v.Address = f.CopyBytes()
		case 2:
			if err := f.Expect("validator.pub_key", protowire.BytesType); err != nil {
				return err
			}
			pk, err := encoding.PubKeyFromProto(f.Bytes)
			if err != nil {
				return protoio.ErrEncoding{Field: "validator.pub_key", Err: err}
			}
			v.PubKey = pk
		case 3:
			if err := f.Expect("validator.voting_power", protowire.VarintType); err != nil {
				return err
			}
			v.VotingPower = int64(f.Uint)
		case 4:
			if err := f.Expect("validator.proposer_priority", protowire.VarintType); err != nil {
				return err
			}
			v.ProposerPriority = int64(f.Uint)
		}
		return nil
	})
}

// Marshal encodes vals as tendermint.types.ValidatorSet without a proposer.
func (vals *ValidatorSet) Marshal() ([]byte, error) {
	var b []byte
	for _, v := range vals.Validators {
		if v.PubKey == nil {
			return nil, fmt.Errorf("validator %v has no public key", v.Address)
		}
		b = protoio.AppendMessageField(b, 1, protoValidator{v})
	}
	return protoio.AppendInt64Field(b, 3, vals.TotalVotingPower()), nil
}

// Unmarshal decodes a validator set and validates it like NewValidatorSet.
// The delivered order is kept.
func (vals *ValidatorSet) Unmarshal(bz []byte) error {
	var valz []*Validator
	err := protoio.ReadFields(bz, func(f protoio.Field) error {
		if f.Num != 1 {
			return nil
		}
		if err := f.Expect("validator_set.validators", protowire.BytesType); err != nil {
			return err
		}
		v := new(Validator)
		if err := v.Unmarshal(f.Bytes); err != nil {
			return err
		}
		valz = append(valz, v)
		return nil
	})
	if err != nil {
		return err
	}
	decoded, err := NewValidatorSet(valz)
	if err != nil {
		return err
	}
	*vals = *decoded
	return nil
}
