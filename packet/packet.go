// Package packet implements the fixed layout packets moved between the
// Cosmos side and the TON side of the bridge, their commitments and the
// replay guard of the receiving end.
//
// Every packet starts with a 4 byte big-endian magic naming its kind,
// followed by big-endian integers, 33 byte addresses (workchain byte and
// account id) and u8 length prefixed byte strings:
//
//	SendToTon:    magic seq:u64 token_origin:u32 remote_amount:u128 timeout:u64
//	              remote_receiver:addr remote_denom:addr local_sender:u8+bytes
//	SendToCosmos: magic seq:u64 token_origin:u32 local_amount:u128 timeout:u64
//	              remote_receiver:u8+bytes local_denom:addr local_sender:addr
package packet

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// Kind is the magic a packet starts with.
type Kind uint32

const (
	KindSendToTon    Kind = 0xae89be5b
	KindSendToCosmos Kind = 0xa64c12a3
)

func (k Kind) String() string {
	switch k {
	case KindSendToTon:
		return "send_to_ton"
	case KindSendToCosmos:
		return "send_to_cosmos"
	default:
		return fmt.Sprintf("unknown(%#08x)", uint32(k))
	}
}

// MaxBlobLen is the longest length prefixed byte string a packet carries.
const MaxBlobLen = 255

// Packet is one of *SendToTon or *SendToCosmos.
type Packet interface {
	Kind() Kind
	Sequence() uint64
	// Timeout is the unix time in seconds after which the packet can no
	// longer be received.
	Timeout() uint64

	appendBody(b []byte) ([]byte, error)
	decodeBody(r *reader)
}

// kinds is the decode dispatch table. A magic missing here is rejected.
var kinds = map[Kind]func() Packet{
	KindSendToTon:    func() Packet { return new(SendToTon) },
	KindSendToCosmos: func() Packet { return new(SendToCosmos) },
}

// SendToTon moves tokens from the Cosmos side to TON.
type SendToTon struct {
	Seq              uint64
	TokenOrigin      uint32
	RemoteAmount     uint256.Int
	TimeoutTimestamp uint64
	RemoteReceiver   Address
	RemoteDenom      Address
	// LocalSender is the bech32 data of the sender on the Cosmos side.
	LocalSender []byte
}

var _ Packet = (*SendToTon)(nil)

func (p *SendToTon) Kind() Kind       { return KindSendToTon }
func (p *SendToTon) Sequence() uint64 { return p.Seq }
func (p *SendToTon) Timeout() uint64  { return p.TimeoutTimestamp }

func (p *SendToTon) appendBody(b []byte) ([]byte, error) {
	b = binary.BigEndian.AppendUint64(b, p.Seq)
	b = binary.BigEndian.AppendUint32(b, p.TokenOrigin)
	b, err := appendUint128(b, "remote_amount", &p.RemoteAmount)
	if err != nil {
		return nil, err
	}
	b = binary.BigEndian.AppendUint64(b, p.TimeoutTimestamp)
	b = p.RemoteReceiver.appendTo(b)
	b = p.RemoteDenom.appendTo(b)
	return appendBlob(b, "local_sender", p.LocalSender)
}

func (p *SendToTon) decodeBody(r *reader) {
	p.Seq = r.uint64("seq")
	p.TokenOrigin = r.uint32("token_origin")
	p.RemoteAmount = r.uint128("remote_amount")
	p.TimeoutTimestamp = r.uint64("timeout_timestamp")
	p.RemoteReceiver = r.address("remote_receiver")
	p.RemoteDenom = r.address("remote_denom")
	p.LocalSender = r.blob("local_sender")
}

func (p *SendToTon) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind             string           `json:"kind"`
		Seq              uint64           `json:"seq,string"`
		TokenOrigin      uint32           `json:"token_origin"`
		RemoteAmount     string           `json:"remote_amount"`
		TimeoutTimestamp uint64           `json:"timeout_timestamp,string"`
		RemoteReceiver   Address          `json:"remote_receiver"`
		RemoteDenom      Address          `json:"remote_denom"`
		LocalSender      tmbytes.HexBytes `json:"local_sender"`
	}{
		p.Kind().String(), p.Seq, p.TokenOrigin, p.RemoteAmount.Dec(), p.TimeoutTimestamp,
		p.RemoteReceiver, p.RemoteDenom, p.LocalSender,
	})
}

// SendToCosmos moves tokens from TON to the Cosmos side.
type SendToCosmos struct {
	Seq              uint64
	TokenOrigin      uint32
	LocalAmount      uint256.Int
	TimeoutTimestamp uint64
	// RemoteReceiver is the bech32 data of the receiver on the Cosmos side.
	RemoteReceiver []byte
	LocalDenom     Address
	LocalSender    Address
}

var _ Packet = (*SendToCosmos)(nil)

func (p *SendToCosmos) Kind() Kind       { return KindSendToCosmos }
func (p *SendToCosmos) Sequence() uint64 { return p.Seq }
func (p *SendToCosmos) Timeout() uint64  { return p.TimeoutTimestamp }

func (p *SendToCosmos) appendBody(b []byte) ([]byte, error) {
	b = binary.BigEndian.AppendUint64(b, p.Seq)
	b = binary.BigEndian.AppendUint32(b, p.TokenOrigin)
	b, err := appendUint128(b, "local_amount", &p.LocalAmount)
	if err != nil {
		return nil, err
	}
	b = binary.BigEndian.AppendUint64(b, p.TimeoutTimestamp)
	b, err = appendBlob(b, "remote_receiver", p.RemoteReceiver)
	if err != nil {
		return nil, err
	}
	b = p.LocalDenom.appendTo(b)
	return p.LocalSender.appendTo(b), nil
}

func (p *SendToCosmos) decodeBody(r *reader) {
	p.Seq = r.uint64("seq")
	p.TokenOrigin = r.uint32("token_origin")
	p.LocalAmount = r.uint128("local_amount")
	p.TimeoutTimestamp = r.uint64("timeout_timestamp")
	p.RemoteReceiver = r.blob("remote_receiver")
	p.LocalDenom = r.address("local_denom")
	p.LocalSender = r.address("local_sender")
}

func (p *SendToCosmos) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind             string           `json:"kind"`
		Seq              uint64           `json:"seq,string"`
		TokenOrigin      uint32           `json:"token_origin"`
		LocalAmount      string           `json:"local_amount"`
		TimeoutTimestamp uint64           `json:"timeout_timestamp,string"`
		RemoteReceiver   tmbytes.HexBytes `json:"remote_receiver"`
		LocalDenom       Address          `json:"local_denom"`
		LocalSender      Address          `json:"local_sender"`
	}{
		p.Kind().String(), p.Seq, p.TokenOrigin, p.LocalAmount.Dec(), p.TimeoutTimestamp,
		p.RemoteReceiver, p.LocalDenom, p.LocalSender,
	})
}

// Encode returns the wire form of p.
func Encode(p Packet) ([]byte, error) {
	if p == nil {
		return nil, protoio.ErrEncoding{Field: "packet", Reason: "nil packet"}
	}
	b := binary.BigEndian.AppendUint32(make([]byte, 0, 128), uint32(p.Kind()))
	return p.appendBody(b)
}

// Decode parses a packet, dispatching on its magic. An unknown magic is
// ErrUnknownPacketKind, a short or overlong body is an ErrEncoding.
func Decode(bz []byte) (Packet, error) {
	r := &reader{bz: bz}
	magic := r.uint32("magic")
	if r.err != nil {
		return nil, r.err
	}
	newPacket, ok := kinds[Kind(magic)]
	if !ok {
		return nil, ErrUnknownPacketKind{Magic: magic}
	}
	p := newPacket()
	p.decodeBody(r)
	if r.err != nil {
		return nil, r.err
	}
	if len(r.bz) != 0 {
		return nil, protoio.ErrEncoding{
			Field:  p.Kind().String(),
			Reason: fmt.Sprintf("%d trailing bytes", len(r.bz)),
		}
	}
	return p, nil
}

func appendUint128(b []byte, field string, v *uint256.Int) ([]byte, error) {
	if v.BitLen() > 128 {
		return nil, protoio.ErrEncoding{Field: field, Reason: fmt.Sprintf("%s overflows 128 bits", v.Dec())}
	}
	bz := v.Bytes32()
	return append(b, bz[16:]...), nil
}

func appendBlob(b []byte, field string, blob []byte) ([]byte, error) {
	if len(blob) > MaxBlobLen {
		return nil, protoio.ErrEncoding{
			Field:  field,
			Reason: fmt.Sprintf("%d bytes exceed the %d byte limit", len(blob), MaxBlobLen),
		}
	}
	b = append(b, byte(len(blob)))
	return append(b, blob...), nil
}

// reader consumes a fixed layout. The first failure sticks and every later
// read returns zero values.
type reader struct {
	bz  []byte
	err error
}

func (r *reader) take(field string, n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.bz) < n {
		r.err = protoio.ErrEncoding{
			Field:  field,
			Reason: fmt.Sprintf("need %d bytes, %d left", n, len(r.bz)),
		}
		return nil
	}
	out := r.bz[:n]
	r.bz = r.bz[n:]
	return out
}

func (r *reader) uint8(field string) uint8 {
	if bz := r.take(field, 1); bz != nil {
		return bz[0]
	}
	return 0
}

func (r *reader) uint32(field string) uint32 {
	if bz := r.take(field, 4); bz != nil {
		return binary.BigEndian.Uint32(bz)
	}
	return 0
}

func (r *reader) uint64(field string) uint64 {
	if bz := r.take(field, 8); bz != nil {
		return binary.BigEndian.Uint64(bz)
	}
	return 0
}

func (r *reader) uint128(field string) uint256.Int {
	var v uint256.Int
	if bz := r.take(field, 16); bz != nil {
		v.SetBytes(bz)
	}
	return v
}

func (r *reader) address(field string) Address {
	var a Address
	if bz := r.take(field, addressLen); bz != nil {
		a.Workchain = int8(bz[0])
		copy(a.Account[:], bz[1:])
	}
	return a
}

func (r *reader) blob(field string) []byte {
	n := r.uint8(field)
	bz := r.take(field, int(n))
	if bz == nil {
		return nil
	}
	return append([]byte(nil), bz...)
}
