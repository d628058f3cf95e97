package bridge

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/oraichain/tonbridge-core/crypto/ics23"
	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/packet"
)

// packetProofJSON is the relayer file format: the packet in its encoded form
// as hex and the existence proofs as printed by cosmjs.
type packetProofJSON struct {
	Height string                  `json:"height"`
	Packet tmbytes.HexBytes        `json:"packet"`
	Proofs []*ics23.ExistenceProof `json:"proofs"`
}

func (p PacketProof) MarshalJSON() ([]byte, error) {
	bz, err := packet.Encode(p.Packet)
	if err != nil {
		return nil, err
	}
	exists := make([]*ics23.ExistenceProof, len(p.Proofs))
	for i, proof := range p.Proofs {
		if proof == nil || proof.Kind != ics23.ProofKindExist {
			return nil, ics23.ErrUnsupportedProofType{Index: i, Kind: kindOf(proof)}
		}
		exists[i] = proof.Exist
	}
	return json.Marshal(packetProofJSON{
		Height: strconv.FormatInt(p.Height, 10),
		Packet: bz,
		Proofs: exists,
	})
}

func (p *PacketProof) UnmarshalJSON(data []byte) error {
	var pj packetProofJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	height, err := strconv.ParseInt(pj.Height, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid height %q: %w", pj.Height, err)
	}
	pkt, err := packet.Decode(pj.Packet)
	if err != nil {
		return fmt.Errorf("invalid packet: %w", err)
	}
	proofs := make([]*ics23.CommitmentProof, len(pj.Proofs))
	for i, exist := range pj.Proofs {
		proofs[i] = ics23.NewExistProof(exist)
	}
	*p = PacketProof{Height: height, Packet: pkt, Proofs: proofs}
	return nil
}

func kindOf(p *ics23.CommitmentProof) ics23.ProofKind {
	if p == nil {
		return ics23.ProofKindUnknown
	}
	return p.Kind
}
