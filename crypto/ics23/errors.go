package ics23

import (
	"errors"
	"fmt"
)

// ErrInvalidProof is wrapped by shape errors that are not tied to a chain
// level.
var ErrInvalidProof = errors.New("invalid proof")

// ErrMembershipFailure means the proof at chain level Index does not prove
// the expected key and value under its spec.
type ErrMembershipFailure struct {
	Index  int
	Reason error
}

func (e ErrMembershipFailure) Error() string {
	return fmt.Sprintf("failed to verify membership at index %d: %v", e.Index, e.Reason)
}

func (e ErrMembershipFailure) Unwrap() error { return e.Reason }

// ErrRootMismatch means the root computed at chain level Index is not the
// value proven by the next level, or not the trusted root for the last
// level.
type ErrRootMismatch struct {
	Index    int
	Expected []byte
	Got      []byte
}

func (e ErrRootMismatch) Error() string {
	return fmt.Sprintf("root mismatch at index %d: expected %X, got %X", e.Index, e.Expected, e.Got)
}

// ErrUnsupportedProofType means the proof at Index is not an existence
// proof.
type ErrUnsupportedProofType struct {
	Index int
	Kind  ProofKind
}

func (e ErrUnsupportedProofType) Error() string {
	if e.Kind == ProofKindNonExist {
		return fmt.Sprintf("proof %d: non-existence proof not supported", e.Index)
	}
	return fmt.Sprintf("proof %d: invalid proof type %v", e.Index, e.Kind)
}
