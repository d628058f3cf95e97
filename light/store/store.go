package store

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/libs/protoio"
	"github.com/oraichain/tonbridge-core/types"
)

// ErrConsensusStateNotFound is returned when a store does not have the
// requested consensus state.
var ErrConsensusStateNotFound = errors.New("consensus state not found")

// ConsensusState is what the bridge keeps of a verified block: enough to
// check proofs against its app hash and to verify the next update.
type ConsensusState struct {
	Height             int64            `json:"height,string"`
	Time               time.Time        `json:"time"`
	AppHash            tmbytes.HexBytes `json:"app_hash"`
	ValidatorsHash     tmbytes.HexBytes `json:"validators_hash"`
	NextValidatorsHash tmbytes.HexBytes `json:"next_validators_hash"`
	BlockHash          tmbytes.HexBytes `json:"block_hash"`
}

// NewConsensusState extracts the consensus state of a verified header.
func NewConsensusState(h *types.Header) ConsensusState {
	return ConsensusState{
		Height:             h.Height,
		Time:               h.Time,
		AppHash:            h.AppHash,
		ValidatorsHash:     h.ValidatorsHash,
		NextValidatorsHash: h.NextValidatorsHash,
		BlockHash:          h.Hash(),
	}
}

// ValidateBasic performs basic validation.
func (cs ConsensusState) ValidateBasic() error {
	if cs.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", cs.Height)
	}
	if err := types.ValidateHash(cs.ValidatorsHash); err != nil {
		return fmt.Errorf("wrong ValidatorsHash: %w", err)
	}
	if err := types.ValidateHash(cs.NextValidatorsHash); err != nil {
		return fmt.Errorf("wrong NextValidatorsHash: %w", err)
	}
	if err := types.ValidateHash(cs.BlockHash); err != nil {
		return fmt.Errorf("wrong BlockHash: %w", err)
	}
	return nil
}

func (cs ConsensusState) String() string {
	return fmt.Sprintf("ConsensusState{#%d %v app:%v vals:%v}", cs.Height, cs.Time, cs.AppHash, cs.ValidatorsHash)
}

var _ protoio.Appender = ConsensusState{}

func (cs ConsensusState) Size() int {
	ts := types.Timestamp(cs.Time)
	return protoio.SizeInt64Field(1, cs.Height) +
		protoio.SizeMessageField(2, ts) +
		protoio.SizeBytesField(3, cs.AppHash) +
		protoio.SizeBytesField(4, cs.ValidatorsHash) +
		protoio.SizeBytesField(5, cs.NextValidatorsHash) +
		protoio.SizeBytesField(6, cs.BlockHash)
}

func (cs ConsensusState) AppendProto(b []byte) []byte {
	b = protoio.AppendInt64Field(b, 1, cs.Height)
	b = protoio.AppendMessageField(b, 2, types.Timestamp(cs.Time))
	b = protoio.AppendBytesField(b, 3, cs.AppHash)
	b = protoio.AppendBytesField(b, 4, cs.ValidatorsHash)
	b = protoio.AppendBytesField(b, 5, cs.NextValidatorsHash)
	return protoio.AppendBytesField(b, 6, cs.BlockHash)
}

func (cs ConsensusState) Marshal() ([]byte, error) { return protoio.Marshal(cs), nil }

func (cs *ConsensusState) Unmarshal(bz []byte) error {
	*cs = ConsensusState{}
	return protoio.ReadFields(bz, func(f protoio.Field) error {
		var err error
		switch f.Num {
		case 1:
			if err = f.Expect("consensus_state.height", protowire.VarintType); err == nil {
				cs.Height = int64(f.Uint)
			}
		case 2:
			if err = f.Expect("consensus_state.time", protowire.BytesType); err == nil {
				cs.Time, err = types.TimestampFromProto(f.Bytes)
			}
		case 3:
			if err = f.Expect("consensus_state.app_hash", protowire.BytesType); err == nil {
				cs.AppHash = f.CopyBytes()
			}
		case 4:
			if err = f.Expect("consensus_state.validators_hash", protowire.BytesType); err == nil {
				cs.ValidatorsHash = f.CopyBytes()
			}
		case 5:
			if err = f.Expect("consensus_state.next_validators_hash", protowire.BytesType); err == nil {
				cs.NextValidatorsHash = f.CopyBytes()
			}
		case 6:
			if err = f.Expect("consensus_state.block_hash", protowire.BytesType); err == nil {
				cs.BlockHash = f.CopyBytes()
			}
		}
		return err
	})
}

// Store is anything that can persistently store consensus states.
type Store interface {
	// SaveConsensusState saves a ConsensusState together with the
	// ValidatorSet of the same height.
	//
	// height must be > 0.
	SaveConsensusState(cs ConsensusState, vals *types.ValidatorSet) error

	// DeleteConsensusState deletes the ConsensusState and ValidatorSet at
	// height.
	//
	// height must be > 0.
	DeleteConsensusState(height int64) error

	// ConsensusState returns the ConsensusState at the given height.
	//
	// If it is not found, ErrConsensusStateNotFound is returned.
	ConsensusState(height int64) (ConsensusState, error)

	// ValidatorSet returns the ValidatorSet stored with the ConsensusState at
	// the given height.
	//
	// If it is not found, ErrConsensusStateNotFound is returned.
	ValidatorSet(height int64) (*types.ValidatorSet, error)

	// LastHeight returns the last (newest) height.
	//
	// If the store is empty, -1 and nil error are returned.
	LastHeight() (int64, error)

	// FirstHeight returns the first (oldest) height.
	//
	// If the store is empty, -1 and nil error are returned.
	FirstHeight() (int64, error)

	// ConsensusStateBefore returns the newest ConsensusState below height.
	//
	// height must be > 0.
	ConsensusStateBefore(height int64) (ConsensusState, error)

	// Prune removes the oldest states until at most size remain.
	Prune(size uint16) error

	// Size returns the number of stored consensus states.
	Size() uint16
}
