package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/oraichain/tonbridge-core/crypto"
)

const (
	// StoreKey is the module store of the Cosmos side holding contract
	// state.
	StoreKey = "wasm"

	SendPacketCommitmentNamespace = "send_packet_commitment"
	AckCommitmentNamespace        = "ack_commitment"

	// contractStorePrefix prefixes the raw storage of a contract in the
	// wasm store.
	contractStorePrefix = 0x03
)

// CommitmentKey returns the key under which the bridge contract stores the
// commitment of the packet with sequence seq.
func CommitmentKey(contract string, seq uint64) ([]byte, error) {
	return contractKey(contract, SendPacketCommitmentNamespace, seq)
}

// AckCommitmentKey returns the key under which the bridge contract stores the
// acknowledgement of sequence seq.
func AckCommitmentKey(contract string, seq uint64) ([]byte, error) {
	return contractKey(contract, AckCommitmentNamespace, seq)
}

// KeyPath returns the key path of a commitment key, outermost store first,
// as consumed by chained membership proofs.
func KeyPath(key []byte) [][]byte {
	return [][]byte{[]byte(StoreKey), key}
}

// Commitment is the value stored under CommitmentKey for p.
func Commitment(p Packet) ([]byte, error) {
	bz, err := Encode(p)
	if err != nil {
		return nil, err
	}
	return crypto.Checksum(bz), nil
}

// contractKey builds 0x03 || address || u16be(len(namespace)) || namespace
// || u64be(seq).
func contractKey(contract, namespace string, seq uint64) ([]byte, error) {
	addr, err := bech32Data(contract)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 0, 1+len(addr)+2+len(namespace)+8)
	key = append(key, contractStorePrefix)
	key = append(key, addr...)
	key = binary.BigEndian.AppendUint16(key, uint16(len(namespace)))
	key = append(key, namespace...)
	return binary.BigEndian.AppendUint64(key, seq), nil
}

// bech32Data returns the bytes a bech32 address encodes. Contract addresses
// are 32 bytes, longer than the 90 characters bech32 limits strings to, so
// the length check is relaxed.
func bech32Data(addr string) ([]byte, error) {
	_, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid bech32 address %q: %w", addr, err)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("invalid bech32 address %q: %w", addr, err)
	}
	return conv, nil
}
