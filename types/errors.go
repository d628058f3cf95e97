package types

import (
	"fmt"
)

type (
	// ErrInvalidCommitHeight is returned when we encounter a commit with an
	// unexpected height.
	ErrInvalidCommitHeight struct {
		Expected int64
		Actual   int64
	}

	// ErrUnknownValidator is returned when a commit carries a signature from
	// an address that is not in the validator set. It is never absorbed: a
	// commit naming strangers is rejected outright.
	ErrUnknownValidator struct {
		Index   int
		Address Address
	}

	// ErrDuplicateVote is returned when one validator signs a commit twice.
	ErrDuplicateVote struct {
		Address Address
		First   int
		Second  int
	}

	// ErrNotEnoughVotingPowerSigned is returned when not enough validators
	// signed a commit.
	ErrNotEnoughVotingPowerSigned struct {
		Got    int64
		Needed int64
		Total  int64
	}
)

// ErrQuorumNotReached is the name the bridge uses for a failed 2/3 check.
type ErrQuorumNotReached = ErrNotEnoughVotingPowerSigned

func NewErrInvalidCommitHeight(expected, actual int64) ErrInvalidCommitHeight {
	return ErrInvalidCommitHeight{
		Expected: expected,
		Actual:   actual,
	}
}

func (e ErrInvalidCommitHeight) Error() string {
	return fmt.Sprintf("invalid commit -- wrong height: %v vs %v", e.Expected, e.Actual)
}

func (e ErrUnknownValidator) Error() string {
	return fmt.Sprintf("signature #%d is from unknown validator %v", e.Index, e.Address)
}

func (e ErrDuplicateVote) Error() string {
	return fmt.Sprintf("double vote from %v (#%d and #%d)", e.Address, e.First, e.Second)
}

func (e ErrNotEnoughVotingPowerSigned) Error() string {
	return fmt.Sprintf("invalid commit -- insufficient voting power: got %d, needed more than %d (total %d)",
		e.Got, e.Needed, e.Total)
}
