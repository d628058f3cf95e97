package ics23

import (
	"fmt"

	protoics23 "github.com/cosmos/ics23/go"
)

// DecodeCommitmentProof decodes the protobuf CommitmentProof carried in the
// data of an "ics23:iavl" or "ics23:simple" proof op.
func DecodeCommitmentProof(bz []byte) (*CommitmentProof, error) {
	var pb protoics23.CommitmentProof
	if err := pb.Unmarshal(bz); err != nil {
		return nil, fmt.Errorf("decode commitment proof: %w", err)
	}
	return commitmentProofFromProto(&pb), nil
}

// EncodeCommitmentProof encodes an existence proof as a protobuf
// CommitmentProof.
func EncodeCommitmentProof(p *CommitmentProof) ([]byte, error) {
	if p == nil || p.Kind != ProofKindExist || p.Exist == nil {
		return nil, fmt.Errorf("%w: only existence proofs can be encoded", ErrInvalidProof)
	}
	pb := &protoics23.CommitmentProof{
		Proof: &protoics23.CommitmentProof_Exist{Exist: existenceProofToProto(p.Exist)},
	}
	return pb.Marshal()
}

func commitmentProofFromProto(pb *protoics23.CommitmentProof) *CommitmentProof {
	switch {
	case pb.GetExist() != nil:
		return NewExistProof(existenceProofFromProto(pb.GetExist()))
	case pb.GetNonexist() != nil:
		return &CommitmentProof{Kind: ProofKindNonExist}
	case pb.GetBatch() != nil:
		return &CommitmentProof{Kind: ProofKindBatch}
	case pb.GetCompressed() != nil:
		return &CommitmentProof{Kind: ProofKindCompressed}
	default:
		return &CommitmentProof{Kind: ProofKindUnknown}
	}
}

func existenceProofFromProto(pb *protoics23.ExistenceProof) *ExistenceProof {
	p := &ExistenceProof{
		Key:   pb.Key,
		Value: pb.Value,
		Path:  make([]*InnerOp, 0, len(pb.Path)),
	}
	if pb.Leaf != nil {
		p.Leaf = &LeafOp{
			Hash:         HashOp(pb.Leaf.Hash),
			PrehashKey:   HashOp(pb.Leaf.PrehashKey),
			PrehashValue: HashOp(pb.Leaf.PrehashValue),
			Length:       LengthOp(pb.Leaf.Length),
			Prefix:       pb.Leaf.Prefix,
		}
	}
	for _, op := range pb.Path {
		if op == nil {
			p.Path = append(p.Path, nil)
			continue
		}
		p.Path = append(p.Path, &InnerOp{
			Hash:   HashOp(op.Hash),
			Prefix: op.Prefix,
			Suffix: op.Suffix,
		})
	}
	return p
}

func existenceProofToProto(p *ExistenceProof) *protoics23.ExistenceProof {
	pb := &protoics23.ExistenceProof{
		Key:   p.Key,
		Value: p.Value,
		Path:  make([]*protoics23.InnerOp, 0, len(p.Path)),
	}
	if p.Leaf != nil {
		pb.Leaf = &protoics23.LeafOp{
			Hash:         protoics23.HashOp(p.Leaf.Hash),
			PrehashKey:   protoics23.HashOp(p.Leaf.PrehashKey),
			PrehashValue: protoics23.HashOp(p.Leaf.PrehashValue),
			Length:       protoics23.LengthOp(p.Leaf.Length),
			Prefix:       p.Leaf.Prefix,
		}
	}
	for _, op := range p.Path {
		pb.Path = append(pb.Path, &protoics23.InnerOp{
			Hash:   protoics23.HashOp(op.Hash),
			Prefix: op.Prefix,
			Suffix: op.Suffix,
		})
	}
	return pb
}
