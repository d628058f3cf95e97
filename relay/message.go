// Package relay lays out the messages a relayer sends to the light client
// and bridge contracts on TON. Every message is a tree of cells (see
// libs/cell) with fixed width fields:
//
//	message    op u32, query id u64, ref body
//	block id   hash 32, part set hash 32, part set total u8
//	time       seconds u32 (zero before the epoch), nanoseconds u32
//	height     u32
//
// Hashes that are absent are written as 32 zero bytes and read back as
// absent. Lists of validators, signatures, proofs and specs are snake lists.
package relay

import (
	"fmt"
	"hash/crc32"

	"github.com/oraichain/tonbridge-core/libs/cell"
)

// Op identifies what a message asks the receiving contract to do. It is the
// CRC-32 (IEEE) of the operation name.
type Op uint32

func opcode(name string) Op {
	return Op(crc32.ChecksumIEEE([]byte(name)))
}

var (
	OpVerifyBlockHash           = opcode("op::verify_block_hash")
	OpVerifyUntrustedValidators = opcode("op::verify_untrusted_validators")
	OpVerifyOnUntrustedSigs     = opcode("op::verify_on_untrusted_sigs")
	OpCreateNewLightClient      = opcode("op::create_new_light_client")
	OpFinalizeVerifyLightClient = opcode("op::finalize_verify_light_client")
	OpReceivePacket             = opcode("op::receive_packet")
	OpChangeLightClientCode     = opcode("op::change_light_client_code")
)

var opNames = map[Op]string{
	OpVerifyBlockHash:           "verify_block_hash",
	OpVerifyUntrustedValidators: "verify_untrusted_validators",
	OpVerifyOnUntrustedSigs:     "verify_on_untrusted_sigs",
	OpCreateNewLightClient:      "create_new_light_client",
	OpFinalizeVerifyLightClient: "finalize_verify_light_client",
	OpReceivePacket:             "receive_packet",
	OpChangeLightClientCode:     "change_light_client_code",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%#08x)", uint32(op))
}

// Message is the envelope of every relayed message.
type Message struct {
	Op      Op
	QueryID uint64
	Body    *cell.Cell
}

// Cell lays the message out.
func (m Message) Cell() (*cell.Cell, error) {
	return cell.NewBuilder().
		StoreUint32(uint32(m.Op)).
		StoreUint64(m.QueryID).
		StoreRef(m.Body).
		Build()
}

// ParseMessage reads a message envelope.
func ParseMessage(c *cell.Cell) (Message, error) {
	s := c.BeginParse()
	m := Message{
		Op:      Op(s.LoadUint32()),
		QueryID: s.LoadUint64(),
		Body:    s.LoadRef(),
	}
	if err := s.End(); err != nil {
		return Message{}, fmt.Errorf("message: %w", err)
	}
	return m, nil
}

// ErrUnexpectedOp is returned when a message carries another operation than
// the one being decoded.
type ErrUnexpectedOp struct {
	Want, Got Op
}

func (e ErrUnexpectedOp) Error() string {
	return fmt.Sprintf("unexpected op %v, want %v", e.Got, e.Want)
}

func parseBody(c *cell.Cell, op Op) (uint64, *cell.Cell, error) {
	m, err := ParseMessage(c)
	if err != nil {
		return 0, nil, err
	}
	if m.Op != op {
		return 0, nil, ErrUnexpectedOp{Want: op, Got: m.Op}
	}
	return m.QueryID, m.Body, nil
}
