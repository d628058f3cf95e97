package relay

import (
	"errors"
	"fmt"
	"math"

	"github.com/oraichain/tonbridge-core/bridge"
	"github.com/oraichain/tonbridge-core/crypto/ics23"
	"github.com/oraichain/tonbridge-core/libs/cell"
	"github.com/oraichain/tonbridge-core/packet"
)

func u8(name string, v int32) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("%s %d does not fit in 8 bits", name, v)
	}
	return uint8(v), nil
}

func encodeLeafOp(op *ics23.LeafOp) (*cell.Cell, error) {
	if op == nil {
		return nil, errors.New("nil leaf op")
	}
	b := cell.NewBuilder()
	for _, f := range []struct {
		name string
		v    int32
	}{
		{"prehash key", int32(op.PrehashKey)},
		{"prehash value", int32(op.PrehashValue)},
		{"hash", int32(op.Hash)},
		{"length", int32(op.Length)},
	} {
		v, err := u8(f.name, f.v)
		if err != nil {
			return nil, err
		}
		b.StoreUint8(v)
	}
	return b.StoreRef(cell.Chunk(op.Prefix)).Build()
}

func decodeLeafOp(c *cell.Cell) (*ics23.LeafOp, error) {
	s := c.BeginParse()
	op := &ics23.LeafOp{
		PrehashKey:   ics23.HashOp(s.LoadUint8()),
		PrehashValue: ics23.HashOp(s.LoadUint8()),
		Hash:         ics23.HashOp(s.LoadUint8()),
		Length:       ics23.LengthOp(s.LoadUint8()),
	}
	prefix := s.LoadRef()
	if err := s.End(); err != nil {
		return nil, fmt.Errorf("leaf op: %w", err)
	}
	var err error
	if op.Prefix, err = unchunk(prefix); err != nil {
		return nil, fmt.Errorf("leaf op prefix: %w", err)
	}
	return op, nil
}

func unchunk(c *cell.Cell) ([]byte, error) {
	bz, err := cell.Unchunk(c)
	if err != nil || len(bz) == 0 {
		return nil, err
	}
	return bz, nil
}

// EncodeExistenceProof lays out p as the key followed by references to the
// chunked value, the leaf op and the list of inner ops. An inner op holds its
// hash op and refers to its chunked prefix and suffix.
func EncodeExistenceProof(p *ics23.ExistenceProof) (*cell.Cell, error) {
	if p == nil {
		return nil, errors.New("nil existence proof")
	}
	leaf, err := encodeLeafOp(p.Leaf)
	if err != nil {
		return nil, err
	}
	path := make([]*cell.Cell, len(p.Path))
	for i, op := range p.Path {
		if op == nil {
			return nil, fmt.Errorf("inner op %d: nil", i)
		}
		hash, err := u8("hash", int32(op.Hash))
		if err != nil {
			return nil, fmt.Errorf("inner op %d: %w", i, err)
		}
		path[i], err = cell.NewBuilder().
			StoreUint8(hash).
			StoreRef(cell.Chunk(op.Prefix)).
			StoreRef(cell.Chunk(op.Suffix)).
			Build()
		if err != nil {
			return nil, fmt.Errorf("inner op %d: %w", i, err)
		}
	}
	pathList, err := cell.List(path)
	if err != nil {
		return nil, err
	}
	c, err := cell.NewBuilder().
		StoreBytes(p.Key).
		StoreRef(cell.Chunk(p.Value)).
		StoreRef(leaf).
		StoreRef(pathList).
		Build()
	if err != nil {
		return nil, fmt.Errorf("existence proof: %w", err)
	}
	return c, nil
}

// DecodeExistenceProof reads a proof laid out by EncodeExistenceProof.
func DecodeExistenceProof(c *cell.Cell) (*ics23.ExistenceProof, error) {
	s := c.BeginParse()
	p := &ics23.ExistenceProof{Key: s.LoadRest()}
	value, leaf, pathList := s.LoadRef(), s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return nil, fmt.Errorf("existence proof: %w", err)
	}
	var err error
	if p.Value, err = unchunk(value); err != nil {
		return nil, fmt.Errorf("existence proof value: %w", err)
	}
	if p.Leaf, err = decodeLeafOp(leaf); err != nil {
		return nil, err
	}
	items, err := cell.ListItems(pathList)
	if err != nil {
		return nil, fmt.Errorf("existence proof path: %w", err)
	}
	for i, item := range items {
		is := item.BeginParse()
		op := &ics23.InnerOp{Hash: ics23.HashOp(is.LoadUint8())}
		prefix, suffix := is.LoadRef(), is.LoadRef()
		if err := is.End(); err != nil {
			return nil, fmt.Errorf("inner op %d: %w", i, err)
		}
		if op.Prefix, err = unchunk(prefix); err != nil {
			return nil, fmt.Errorf("inner op %d prefix: %w", i, err)
		}
		if op.Suffix, err = unchunk(suffix); err != nil {
			return nil, fmt.Errorf("inner op %d suffix: %w", i, err)
		}
		p.Path = append(p.Path, op)
	}
	return p, nil
}

// EncodeProofSpec lays out a spec as references to its leaf spec and its
// inner spec. The inner spec holds the hash op, the prefix length bounds, the
// number of children and the child size. Only specs hashing their children
// in position order can be laid out; depth limits and the empty child are
// not carried.
func EncodeProofSpec(spec *ics23.ProofSpec) (*cell.Cell, error) {
	if spec == nil || spec.InnerSpec == nil {
		return nil, errors.New("incomplete proof spec")
	}
	leaf, err := encodeLeafOp(spec.LeafSpec)
	if err != nil {
		return nil, fmt.Errorf("leaf spec: %w", err)
	}
	in := spec.InnerSpec
	for i, child := range in.ChildOrder {
		if child != int32(i) {
			return nil, fmt.Errorf("child order %v is not in position order", in.ChildOrder)
		}
	}
	b := cell.NewBuilder()
	for _, f := range []struct {
		name string
		v    int32
	}{
		{"hash", int32(in.Hash)},
		{"min prefix length", in.MinPrefixLength},
		{"max prefix length", in.MaxPrefixLength},
		{"child count", int32(len(in.ChildOrder))},
		{"child size", in.ChildSize},
	} {
		v, err := u8(f.name, f.v)
		if err != nil {
			return nil, fmt.Errorf("inner spec: %w", err)
		}
		b.StoreUint8(v)
	}
	inner, err := b.Build()
	if err != nil {
		return nil, err
	}
	return cell.NewBuilder().StoreRef(leaf).StoreRef(inner).Build()
}

// DecodeProofSpec reads a spec laid out by EncodeProofSpec.
func DecodeProofSpec(c *cell.Cell) (*ics23.ProofSpec, error) {
	s := c.BeginParse()
	leaf, inner := s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return nil, fmt.Errorf("proof spec: %w", err)
	}
	leafSpec, err := decodeLeafOp(leaf)
	if err != nil {
		return nil, fmt.Errorf("leaf spec: %w", err)
	}
	is := inner.BeginParse()
	in := &ics23.InnerSpec{
		Hash:            ics23.HashOp(is.LoadUint8()),
		MinPrefixLength: int32(is.LoadUint8()),
		MaxPrefixLength: int32(is.LoadUint8()),
	}
	children := int(is.LoadUint8())
	in.ChildSize = int32(is.LoadUint8())
	if err := is.End(); err != nil {
		return nil, fmt.Errorf("inner spec: %w", err)
	}
	in.ChildOrder = make([]int32, children)
	for i := range in.ChildOrder {
		in.ChildOrder[i] = int32(i)
	}
	return &ics23.ProofSpec{LeafSpec: leafSpec, InnerSpec: in}, nil
}

func encodeProofs(proofs []*ics23.CommitmentProof) (*cell.Cell, error) {
	items := make([]*cell.Cell, len(proofs))
	for i, p := range proofs {
		if p == nil || p.Kind != ics23.ProofKindExist || p.Exist == nil {
			kind := ics23.ProofKindUnknown
			if p != nil {
				kind = p.Kind
			}
			return nil, ics23.ErrUnsupportedProofType{Index: i, Kind: kind}
		}
		c, err := EncodeExistenceProof(p.Exist)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		items[i] = c
	}
	return cell.List(items)
}

func decodeProofs(c *cell.Cell) ([]*ics23.CommitmentProof, error) {
	items, err := cell.ListItems(c)
	if err != nil {
		return nil, fmt.Errorf("proofs: %w", err)
	}
	proofs := make([]*ics23.CommitmentProof, len(items))
	for i, item := range items {
		p, err := DecodeExistenceProof(item)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		proofs[i] = ics23.NewExistProof(p)
	}
	return proofs, nil
}

// ChainedMembership is everything needed to check a value against a root
// through a chain of proofs.
type ChainedMembership struct {
	Root    []byte
	Value   []byte
	Specs   []*ics23.ProofSpec
	Proofs  []*ics23.CommitmentProof
	KeyPath [][]byte
}

// Verify checks the membership the way the receiving contract does.
func (m ChainedMembership) Verify() error {
	return ics23.VerifyChainedMembership(m.Root, m.Specs, m.Proofs, m.KeyPath, m.Value)
}

// Cell lays m out as the 32 byte root and the value, followed by references
// to the proof list, the spec list and the key list. Keys are listed
// innermost first so that the n-th key belongs to the n-th proof.
func (m ChainedMembership) Cell() (*cell.Cell, error) {
	proofs, err := encodeProofs(m.Proofs)
	if err != nil {
		return nil, err
	}
	specItems := make([]*cell.Cell, len(m.Specs))
	for i, spec := range m.Specs {
		if specItems[i], err = EncodeProofSpec(spec); err != nil {
			return nil, fmt.Errorf("spec %d: %w", i, err)
		}
	}
	specs, err := cell.List(specItems)
	if err != nil {
		return nil, err
	}
	keyItems := make([]*cell.Cell, len(m.KeyPath))
	for i, key := range m.KeyPath {
		c, err := cell.NewBuilder().StoreBytes(key).Build()
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keyItems[len(m.KeyPath)-1-i] = c
	}
	keys, err := cell.List(keyItems)
	if err != nil {
		return nil, err
	}
	if len(m.Root) != 32 {
		return nil, fmt.Errorf("root must be 32 bytes, got %d", len(m.Root))
	}
	return cell.NewBuilder().
		StoreBytes(m.Root).
		StoreBytes(m.Value).
		StoreRef(proofs).
		StoreRef(specs).
		StoreRef(keys).
		Build()
}

// ParseChainedMembership reads a cell built by ChainedMembership.Cell.
func ParseChainedMembership(c *cell.Cell) (ChainedMembership, error) {
	s := c.BeginParse()
	m := ChainedMembership{
		Root:  s.LoadBytes(32),
		Value: s.LoadRest(),
	}
	proofs, specs, keys := s.LoadRef(), s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return ChainedMembership{}, fmt.Errorf("chained membership: %w", err)
	}
	var err error
	if m.Proofs, err = decodeProofs(proofs); err != nil {
		return ChainedMembership{}, err
	}
	specItems, err := cell.ListItems(specs)
	if err != nil {
		return ChainedMembership{}, fmt.Errorf("specs: %w", err)
	}
	for i, item := range specItems {
		spec, err := DecodeProofSpec(item)
		if err != nil {
			return ChainedMembership{}, fmt.Errorf("spec %d: %w", i, err)
		}
		m.Specs = append(m.Specs, spec)
	}
	keyItems, err := cell.ListItems(keys)
	if err != nil {
		return ChainedMembership{}, fmt.Errorf("keys: %w", err)
	}
	m.KeyPath = make([][]byte, len(keyItems))
	for i, item := range keyItems {
		if len(item.Refs()) != 0 {
			return ChainedMembership{}, fmt.Errorf("key %d: unexpected references", i)
		}
		m.KeyPath[len(keyItems)-1-i] = item.Data()
	}
	return m, nil
}

// EncodeReceivePacket builds the message handing a proven packet to the
// bridge contract. The body holds the proven height and refers to the
// chunked packet and to the proof list; the contract derives the commitment
// key and the specs itself.
func EncodeReceivePacket(queryID uint64, p bridge.PacketProof) (*cell.Cell, error) {
	if p.Height <= 0 {
		return nil, fmt.Errorf("invalid proven height %d", p.Height)
	}
	if p.Packet == nil {
		return nil, bridge.ErrNoPacket
	}
	bz, err := packet.Encode(p.Packet)
	if err != nil {
		return nil, err
	}
	proofs, err := encodeProofs(p.Proofs)
	if err != nil {
		return nil, err
	}
	body, err := cell.NewBuilder().
		StoreUint64(uint64(p.Height)).
		StoreRef(cell.Chunk(bz)).
		StoreRef(proofs).
		Build()
	if err != nil {
		return nil, err
	}
	return Message{Op: OpReceivePacket, QueryID: queryID, Body: body}.Cell()
}

// DecodeReceivePacket reads a message built by EncodeReceivePacket.
func DecodeReceivePacket(c *cell.Cell) (uint64, bridge.PacketProof, error) {
	queryID, body, err := parseBody(c, OpReceivePacket)
	if err != nil {
		return 0, bridge.PacketProof{}, err
	}
	s := body.BeginParse()
	height := s.LoadUint64()
	packetCell, proofs := s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return 0, bridge.PacketProof{}, fmt.Errorf("receive packet body: %w", err)
	}
	if height == 0 || height > math.MaxInt64 {
		return 0, bridge.PacketProof{}, fmt.Errorf("invalid proven height %d", height)
	}
	bz, err := cell.Unchunk(packetCell)
	if err != nil {
		return 0, bridge.PacketProof{}, fmt.Errorf("packet: %w", err)
	}
	pkt, err := packet.Decode(bz)
	if err != nil {
		return 0, bridge.PacketProof{}, err
	}
	pp := bridge.PacketProof{Height: int64(height), Packet: pkt}
	if pp.Proofs, err = decodeProofs(proofs); err != nil {
		return 0, bridge.PacketProof{}, err
	}
	return queryID, pp, nil
}
