package ics23

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// InnerSpec constrains the inner nodes of a tree.
type InnerSpec struct {
	// ChildOrder lists child positions in the order they are hashed.
	ChildOrder      []int32 `json:"childOrder"`
	ChildSize       int32   `json:"childSize"`
	MinPrefixLength int32   `json:"minPrefixLength"`
	MaxPrefixLength int32   `json:"maxPrefixLength"`
	EmptyChild      []byte  `json:"emptyChild,omitempty"`
	Hash            HashOp  `json:"hash"`
}

// ProofSpec defines what a valid proof for one kind of tree looks like.
// MaxDepth and MinDepth are ignored when zero.
type ProofSpec struct {
	LeafSpec  *LeafOp    `json:"leafSpec"`
	InnerSpec *InnerSpec `json:"innerSpec"`
	MaxDepth  int32      `json:"maxDepth,omitempty"`
	MinDepth  int32      `json:"minDepth,omitempty"`
}

// IavlSpec matches proofs produced by a cosmos-sdk IAVL store.
var IavlSpec = &ProofSpec{
	LeafSpec: &LeafOp{
		Prefix:       []byte{0},
		Hash:         HashOpSHA256,
		PrehashValue: HashOpSHA256,
		PrehashKey:   HashOpNoHash,
		Length:       LengthOpVarProto,
	},
	InnerSpec: &InnerSpec{
		ChildOrder:      []int32{0, 1},
		MinPrefixLength: 4,
		MaxPrefixLength: 12,
		ChildSize:       33,
		Hash:            HashOpSHA256,
	},
}

// TendermintSpec matches the simple merkle tree of the multistore root.
var TendermintSpec = &ProofSpec{
	LeafSpec: &LeafOp{
		Prefix:       []byte{0},
		Hash:         HashOpSHA256,
		PrehashValue: HashOpSHA256,
		PrehashKey:   HashOpNoHash,
		Length:       LengthOpVarProto,
	},
	InnerSpec: &InnerSpec{
		ChildOrder:      []int32{0, 1},
		MinPrefixLength: 1,
		MaxPrefixLength: 1,
		ChildSize:       32,
		Hash:            HashOpSHA256,
	},
}

// DefaultSpecs returns the spec chain for a value stored in a cosmos-sdk
// module store: IAVL for the module, then the multistore.
func DefaultSpecs() []*ProofSpec {
	return []*ProofSpec{IavlSpec, TendermintSpec}
}

// ValidateBasic checks that the spec is complete.
func (s *ProofSpec) ValidateBasic() error {
	if s == nil {
		return fmt.Errorf("nil proof spec")
	}
	if s.LeafSpec == nil {
		return fmt.Errorf("spec missing leaf spec")
	}
	if s.InnerSpec == nil {
		return fmt.Errorf("spec missing inner spec")
	}
	if len(s.InnerSpec.ChildOrder) < 2 {
		return fmt.Errorf("inner spec needs at least two children, got %d", len(s.InnerSpec.ChildOrder))
	}
	if s.InnerSpec.ChildSize <= 0 {
		return fmt.Errorf("inner spec child size must be positive, got %d", s.InnerSpec.ChildSize)
	}
	if s.InnerSpec.MinPrefixLength > s.InnerSpec.MaxPrefixLength {
		return fmt.Errorf("inner spec min prefix %d exceeds max prefix %d",
			s.InnerSpec.MinPrefixLength, s.InnerSpec.MaxPrefixLength)
	}
	return nil
}

// Equal reports whether both specs describe the same tree.
func (s *ProofSpec) Equal(o *ProofSpec) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.MaxDepth != o.MaxDepth || s.MinDepth != o.MinDepth {
		return false
	}
	if !s.LeafSpec.equal(o.LeafSpec) {
		return false
	}
	a, b := s.InnerSpec, o.InnerSpec
	if a == nil || b == nil {
		return a == b
	}
	if len(a.ChildOrder) != len(b.ChildOrder) {
		return false
	}
	for i := range a.ChildOrder {
		if a.ChildOrder[i] != b.ChildOrder[i] {
			return false
		}
	}
	return a.ChildSize == b.ChildSize &&
		a.MinPrefixLength == b.MinPrefixLength &&
		a.MaxPrefixLength == b.MaxPrefixLength &&
		a.Hash == b.Hash &&
		bytes.Equal(a.EmptyChild, b.EmptyChild)
}

func (op *LeafOp) equal(o *LeafOp) bool {
	if op == nil || o == nil {
		return op == o
	}
	return op.Hash == o.Hash &&
		op.PrehashKey == o.PrehashKey &&
		op.PrehashValue == o.PrehashValue &&
		op.Length == o.Length &&
		bytes.Equal(op.Prefix, o.Prefix)
}

// checkAgainstSpec validates a leaf op against the leaf spec.
func (op *LeafOp) checkAgainstSpec(spec *ProofSpec) error {
	if op == nil {
		return fmt.Errorf("missing leaf op")
	}
	ls := spec.LeafSpec
	if op.Hash != ls.Hash {
		return fmt.Errorf("unexpected hash op: %v, expected %v", op.Hash, ls.Hash)
	}
	if op.PrehashKey != ls.PrehashKey {
		return fmt.Errorf("unexpected prehash key: %v, expected %v", op.PrehashKey, ls.PrehashKey)
	}
	if op.PrehashValue != ls.PrehashValue {
		return fmt.Errorf("unexpected prehash value: %v, expected %v", op.PrehashValue, ls.PrehashValue)
	}
	if op.Length != ls.Length {
		return fmt.Errorf("unexpected length op: %v, expected %v", op.Length, ls.Length)
	}
	if !bytes.HasPrefix(op.Prefix, ls.Prefix) {
		return fmt.Errorf("leaf prefix %X does not start with %X", op.Prefix, ls.Prefix)
	}
	if spec.Equal(IavlSpec) {
		return checkIavlPrefix(op.Prefix, 0)
	}
	return nil
}

// checkAgainstSpec validates an inner op at the given layer (1 for the
// parent of the leaf) against the inner spec. The bound on the prefix leaves
// room for the siblings left of the proven child.
func (op *InnerOp) checkAgainstSpec(spec *ProofSpec, layer int) error {
	if op == nil {
		return fmt.Errorf("missing inner op")
	}
	is := spec.InnerSpec
	if op.Hash != is.Hash {
		return fmt.Errorf("unexpected hash op: %v, expected %v", op.Hash, is.Hash)
	}
	if bytes.HasPrefix(op.Prefix, spec.LeafSpec.Prefix) {
		return fmt.Errorf("inner prefix %X starts with leaf prefix %X", op.Prefix, spec.LeafSpec.Prefix)
	}
	if len(op.Prefix) < int(is.MinPrefixLength) {
		return fmt.Errorf("inner prefix too short: %d < %d", len(op.Prefix), is.MinPrefixLength)
	}
	maxLeftChildBytes := (len(is.ChildOrder) - 1) * int(is.ChildSize)
	if len(op.Prefix) > int(is.MaxPrefixLength)+maxLeftChildBytes {
		return fmt.Errorf("inner prefix too long: %d > %d",
			len(op.Prefix), int(is.MaxPrefixLength)+maxLeftChildBytes)
	}
	if len(op.Suffix)%int(is.ChildSize) != 0 {
		return fmt.Errorf("inner suffix length %d is not a multiple of child size %d",
			len(op.Suffix), is.ChildSize)
	}
	if spec.Equal(IavlSpec) {
		return checkIavlPrefix(op.Prefix, layer)
	}
	return nil
}

// checkIavlPrefix checks the node header an IAVL prefix starts with: zigzag
// varints for height, size and version, none negative. A node at layer n
// sits at height n or above. A leaf has nothing after the version; an inner
// node has the length byte of the proven child, optionally preceded by a
// length-prefixed left sibling.
func checkIavlPrefix(prefix []byte, layer int) error {
	r := bytes.NewReader(prefix)
	var header [3]int64
	for i, name := range []string{"height", "size", "version"} {
		v, err := binary.ReadVarint(r)
		if err != nil {
			return fmt.Errorf("failed to read IAVL %s varint: %w", name, err)
		}
		if v < 0 {
			return fmt.Errorf("IAVL %s must be non-negative, got %d", name, v)
		}
		header[i] = v
	}
	if header[0] < int64(layer) {
		return fmt.Errorf("IAVL height %d is below the layer number %d", header[0], layer)
	}

	rest := r.Len()
	if layer == 0 {
		if rest != 0 {
			return fmt.Errorf("expected nothing after the IAVL leaf header, got %d bytes", rest)
		}
		return nil
	}
	if rest != 1 && rest != 2+iavlChildSize {
		return fmt.Errorf("unexpected %d bytes after the IAVL inner header", rest)
	}
	return nil
}

const iavlChildSize = 32
