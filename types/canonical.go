package types

import (
	"fmt"
	"time"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// CanonicalVote is the message validators sign. It mirrors
// tendermint.types.CanonicalVote: height and round are sfixed64, the block
// id is omitted for nil votes and the timestamp is always written.
type CanonicalVote struct {
	Type      SignedMsgType
	Height    int64
	Round     int64
	BlockID   *BlockID
	Timestamp time.Time
	ChainID   string
}

var _ protoio.Appender = (*CanonicalVote)(nil)

// CanonicalizeBlockID returns nil for the zero BlockID, which is what a nil
// vote signs.
func CanonicalizeBlockID(bid BlockID) *BlockID {
	if bid.IsNil() {
		return nil
	}
	return &BlockID{
		Hash:          bid.Hash,
		PartSetHeader: bid.PartSetHeader,
	}
}

// CanonicalizeVote transforms the given Vote to a CanonicalVote, which does
// not contain ValidatorIndex and ValidatorAddress fields.
func CanonicalizeVote(chainID string, vote *Vote) CanonicalVote {
	return CanonicalVote{
		Type:      vote.Type,
		Height:    vote.Height,       // encoded as sfixed64
		Round:     int64(vote.Round), // encoded as sfixed64
		BlockID:   CanonicalizeBlockID(vote.BlockID),
		Timestamp: vote.Timestamp,
		ChainID:   chainID,
	}
}

func (cv *CanonicalVote) Size() int {
	n := protoio.SizeVarintField(1, uint64(cv.Type)) +
		protoio.SizeSfixed64Field(2, cv.Height) +
		protoio.SizeSfixed64Field(3, cv.Round) +
		protoio.SizeMessageField(5, Timestamp(cv.Timestamp)) +
		protoio.SizeStringField(6, cv.ChainID)
	if cv.BlockID != nil {
		n += protoio.SizeMessageField(4, *cv.BlockID)
	}
	return n
}

func (cv *CanonicalVote) AppendProto(b []byte) []byte {
	b = protoio.AppendVarintField(b, 1, uint64(cv.Type))
	b = protoio.AppendSfixed64Field(b, 2, cv.Height)
	b = protoio.AppendSfixed64Field(b, 3, cv.Round)
	if cv.BlockID != nil {
		b = protoio.AppendMessageField(b, 4, *cv.BlockID)
	}
	b = protoio.AppendMessageField(b, 5, Timestamp(cv.Timestamp))
	return protoio.AppendStringField(b, 6, cv.ChainID)
}

// Marshal, Reset, String and ProtoMessage let CanonicalVote go through the
// delimited writer like any generated message.

func (cv *CanonicalVote) Marshal() ([]byte, error) { return protoio.Marshal(cv), nil }
func (cv *CanonicalVote) Reset()                   { *cv = CanonicalVote{} }
func (*CanonicalVote) ProtoMessage()               {}

func (cv *CanonicalVote) String() string {
	return fmt.Sprintf("CanonicalVote{%v %d/%d %v %s %s}",
		cv.Type, cv.Height, cv.Round, cv.BlockID,
		cv.Timestamp.Format(time.RFC3339Nano), cv.ChainID)
}
