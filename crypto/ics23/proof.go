package ics23

import (
	"bytes"
	"fmt"
)

// ExistenceProof proves that Key maps to Value in a tree. Path runs from the
// leaf up to the root.
type ExistenceProof struct {
	Key   []byte     `json:"key"`
	Value []byte     `json:"value"`
	Leaf  *LeafOp    `json:"leaf"`
	Path  []*InnerOp `json:"path"`
}

// ProofKind tags the variant carried by a CommitmentProof.
type ProofKind uint8

const (
	ProofKindUnknown ProofKind = iota
	ProofKindExist
	ProofKindNonExist
	ProofKindBatch
	ProofKindCompressed
)

func (k ProofKind) String() string {
	switch k {
	case ProofKindExist:
		return "exist"
	case ProofKindNonExist:
		return "nonexist"
	case ProofKindBatch:
		return "batch"
	case ProofKindCompressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// CommitmentProof is one level of a chained proof. Only existence proofs
// carry a body; other kinds are kept as a tag so they can be rejected with a
// precise error.
type CommitmentProof struct {
	Kind  ProofKind
	Exist *ExistenceProof
}

// NewExistProof wraps an existence proof.
func NewExistProof(p *ExistenceProof) *CommitmentProof {
	return &CommitmentProof{Kind: ProofKindExist, Exist: p}
}

// Calculate folds the leaf and the path into the root this proof commits to.
func (p *ExistenceProof) Calculate() ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil existence proof", ErrInvalidProof)
	}
	if p.Leaf == nil {
		return nil, fmt.Errorf("%w: existence proof must start with a leaf operation", ErrInvalidProof)
	}
	res, err := p.Leaf.Apply(p.Key, p.Value)
	if err != nil {
		return nil, fmt.Errorf("leaf: %w", err)
	}
	for i, step := range p.Path {
		if step == nil {
			return nil, fmt.Errorf("%w: nil inner op %d", ErrInvalidProof, i)
		}
		res, err = step.Apply(res)
		if err != nil {
			return nil, fmt.Errorf("inner op %d: %w", i, err)
		}
	}
	return res, nil
}

// CheckAgainstSpec verifies that every operation of the proof is allowed by
// spec.
func (p *ExistenceProof) CheckAgainstSpec(spec *ProofSpec) error {
	if err := spec.ValidateBasic(); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: nil existence proof", ErrInvalidProof)
	}
	if err := p.Leaf.checkAgainstSpec(spec); err != nil {
		return fmt.Errorf("leaf: %w", err)
	}
	if spec.MinDepth > 0 && len(p.Path) < int(spec.MinDepth) {
		return fmt.Errorf("inner path depth too short: %d < %d", len(p.Path), spec.MinDepth)
	}
	if spec.MaxDepth > 0 && len(p.Path) > int(spec.MaxDepth) {
		return fmt.Errorf("inner path depth too long: %d > %d", len(p.Path), spec.MaxDepth)
	}
	for i, inner := range p.Path {
		if err := inner.checkAgainstSpec(spec, i+1); err != nil {
			return fmt.Errorf("inner op %d: %w", i, err)
		}
	}
	return nil
}

// Verify checks the proof against spec, then that it proves key and value
// and that it commits to root. The returned error says which step failed.
func (p *ExistenceProof) Verify(spec *ProofSpec, root, key, value []byte) error {
	if err := p.CheckAgainstSpec(spec); err != nil {
		return err
	}
	if !bytes.Equal(key, p.Key) {
		return fmt.Errorf("provided key %X does not match proof key %X", key, p.Key)
	}
	if !bytes.Equal(value, p.Value) {
		return fmt.Errorf("provided value %X does not match proof value %X", value, p.Value)
	}
	calc, err := p.Calculate()
	if err != nil {
		return err
	}
	if !bytes.Equal(root, calc) {
		return fmt.Errorf("calculated root %X does not match provided root %X", calc, root)
	}
	return nil
}

// VerifyExistence recomputes the root of proof and compares it with root. A
// proof that is malformed or violates spec returns an error; a well-formed
// proof for another key, value or root returns false.
func VerifyExistence(proof *ExistenceProof, spec *ProofSpec, root, key, value []byte) (bool, error) {
	if err := proof.CheckAgainstSpec(spec); err != nil {
		return false, err
	}
	if !bytes.Equal(key, proof.Key) || !bytes.Equal(value, proof.Value) {
		return false, nil
	}
	calc, err := proof.Calculate()
	if err != nil {
		return false, err
	}
	return bytes.Equal(root, calc), nil
}

// VerifyMembership reports whether proof shows that key maps to value under
// root. Only existence proofs can succeed.
func VerifyMembership(spec *ProofSpec, root []byte, proof *CommitmentProof, key, value []byte) bool {
	if proof == nil || proof.Kind != ProofKindExist {
		return false
	}
	return proof.Exist.Verify(spec, root, key, value) == nil
}
