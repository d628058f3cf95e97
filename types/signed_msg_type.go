package types

import "fmt"

// SignedMsgType is a type of signed message in the consensus.
type SignedMsgType int32

const (
	UnknownType SignedMsgType = 0
	// Votes
	PrevoteType   SignedMsgType = 1
	PrecommitType SignedMsgType = 2
	// Proposals
	ProposalType SignedMsgType = 32
)

// IsVoteTypeValid returns true if t is a valid vote type.
func IsVoteTypeValid(t SignedMsgType) bool {
	switch t {
	case PrevoteType, PrecommitType:
		return true
	default:
		return false
	}
}

func (t SignedMsgType) String() string {
	switch t {
	case PrevoteType:
		return "SIGNED_MSG_TYPE_PREVOTE"
	case PrecommitType:
		return "SIGNED_MSG_TYPE_PRECOMMIT"
	case ProposalType:
		return "SIGNED_MSG_TYPE_PROPOSAL"
	case UnknownType:
		return "SIGNED_MSG_TYPE_UNKNOWN"
	default:
		return fmt.Sprintf("SignedMsgType(%d)", int32(t))
	}
}
