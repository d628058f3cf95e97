package ics23

import (
	"bytes"
	"fmt"
)

// VerifyChainedMembership verifies value at keyPath through a chain of
// proofs, innermost first. proofs[0] proves value under keyPath[last] and
// yields subroot 0; proofs[i] proves subroot i-1 under keyPath[len-1-i]. The
// last subroot must equal root.
//
// A level whose proof is not an existence proof fails with
// ErrUnsupportedProofType, a level that does not prove its key and value
// under its spec with ErrMembershipFailure, and a level whose subroot is not
// what the next level (or root) expects with ErrRootMismatch.
func VerifyChainedMembership(
	root []byte,
	specs []*ProofSpec,
	proofs []*CommitmentProof,
	keyPath [][]byte,
	value []byte,
) error {
	if len(proofs) == 0 {
		return fmt.Errorf("%w: empty proof chain", ErrInvalidProof)
	}
	if len(specs) != len(proofs) {
		return fmt.Errorf("%w: got %d specs for %d proofs", ErrInvalidProof, len(specs), len(proofs))
	}
	if len(keyPath) < len(proofs) {
		return fmt.Errorf("%w: key path of %d keys is shorter than %d proofs",
			ErrInvalidProof, len(keyPath), len(proofs))
	}

	for i, proof := range proofs {
		if proof == nil {
			return ErrUnsupportedProofType{Index: i, Kind: ProofKindUnknown}
		}
		if proof.Kind != ProofKindExist {
			return ErrUnsupportedProofType{Index: i, Kind: proof.Kind}
		}
		if proof.Exist == nil {
			return ErrMembershipFailure{Index: i, Reason: fmt.Errorf("%w: empty existence proof", ErrInvalidProof)}
		}
	}

	for i, proof := range proofs {
		exist := proof.Exist
		key := keyPath[len(keyPath)-1-i]
		if len(key) == 0 {
			return ErrMembershipFailure{Index: i, Reason: fmt.Errorf("empty key at key path index %d", len(keyPath)-1-i)}
		}
		if err := exist.CheckAgainstSpec(specs[i]); err != nil {
			return ErrMembershipFailure{Index: i, Reason: err}
		}
		if !bytes.Equal(exist.Key, key) {
			return ErrMembershipFailure{Index: i, Reason: fmt.Errorf("proof key %X does not match %X", exist.Key, key)}
		}
		if i == 0 && !bytes.Equal(exist.Value, value) {
			return ErrMembershipFailure{Index: i, Reason: fmt.Errorf("proof value %X does not match %X", exist.Value, value)}
		}
		subroot, err := exist.Calculate()
		if err != nil {
			return ErrMembershipFailure{Index: i, Reason: err}
		}

		expected := root
		if i+1 < len(proofs) {
			expected = proofs[i+1].Exist.Value
		}
		if !bytes.Equal(subroot, expected) {
			return ErrRootMismatch{Index: i, Expected: expected, Got: subroot}
		}
	}
	return nil
}
