package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
)

// MaxBranchLength bounds the proof depth; it is the depth of a tree of
// 2^63 leaves.
const MaxBranchLength = 63

var (
	// ErrLeafNotFound is returned when the target is not among the leaves.
	ErrLeafNotFound = errors.New("leaf not found")
	// ErrBranchLengthMismatch is returned when a proof has a different
	// number of siblings and direction bits.
	ErrBranchLengthMismatch = errors.New("branch and positions length mismatch")
)

// BranchProof proves that a leaf is part of a tree. Branch holds the sibling
// hashes from the leaf up to the root, Positions the matching direction bits:
// true means the sibling is on the left, i.e. the proven node is a right
// child.
type BranchProof struct {
	Index     int64    `json:"index"`
	Total     int64    `json:"total"`
	Branch    [][]byte `json:"branch"`
	Positions []bool   `json:"positions"`
}

// ProveMembership builds the branch for the first leaf equal to target.
func ProveMembership(leaves [][]byte, target []byte) (*BranchProof, error) {
	t := BuildTree(leaves)
	i := t.IndexOf(target)
	if i < 0 {
		return nil, ErrLeafNotFound
	}
	return t.Prove(i)
}

// Prove builds the branch for the leaf at position index.
func (t *Tree) Prove(index int) (*BranchProof, error) {
	if index < 0 || index >= len(t.Leaves) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, len(t.Leaves))
	}
	p := &BranchProof{Index: int64(index), Total: int64(len(t.Leaves))}
	for n := t.Leaves[index]; n.Parent != nil; n = n.Parent {
		if n.Parent.Right == n {
			p.Branch = append(p.Branch, n.Parent.Left.Hash)
			p.Positions = append(p.Positions, true)
		} else {
			p.Branch = append(p.Branch, n.Parent.Right.Hash)
			p.Positions = append(p.Positions, false)
		}
	}
	return p, nil
}

// ValidateBasic checks the shape of the proof.
func (p *BranchProof) ValidateBasic() error {
	if p == nil {
		return errors.New("nil proof")
	}
	if len(p.Branch) != len(p.Positions) {
		return fmt.Errorf("%w: %d siblings, %d positions",
			ErrBranchLengthMismatch, len(p.Branch), len(p.Positions))
	}
	if len(p.Branch) > MaxBranchLength {
		return fmt.Errorf("expected no more than %d siblings, got %d", MaxBranchLength, len(p.Branch))
	}
	for i, h := range p.Branch {
		if len(h) != sha256.Size {
			return fmt.Errorf("expected sibling #%d to be %d bytes, got %d", i, sha256.Size, len(h))
		}
	}
	return nil
}

// ComputeRoot folds the branch over leaf and returns the candidate root.
func (p *BranchProof) ComputeRoot(leaf []byte) ([]byte, error) {
	if err := p.ValidateBasic(); err != nil {
		return nil, err
	}
	h := leafHash(leaf)
	for i, sibling := range p.Branch {
		if p.Positions[i] {
			h = innerHash(sibling, h)
		} else {
			h = innerHash(h, sibling)
		}
	}
	return h, nil
}

// VerifyMembership reports whether leaf is committed under root. A
// well-formed proof that does not match yields false and no error.
func VerifyMembership(leaf []byte, proof *BranchProof, root []byte) (bool, error) {
	computed, err := proof.ComputeRoot(leaf)
	if err != nil {
		return false, err
	}
	return bytes.Equal(computed, root), nil
}
