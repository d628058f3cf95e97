package bridge

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoPacket is returned for a proof that carries no packet.
var ErrNoPacket = errors.New("proof carries no packet")

// ErrPacketTimedOut is returned when a packet is received at or after its
// timeout.
type ErrPacketTimedOut struct {
	Seq     uint64
	Timeout uint64
	Now     time.Time
}

func (e ErrPacketTimedOut) Error() string {
	return fmt.Sprintf("packet %d timed out at %d (now %d)", e.Seq, e.Timeout, e.Now.Unix())
}

// ErrNoTrustedState is returned when the light client has no verified
// consensus state at the proven height.
type ErrNoTrustedState struct {
	Height int64
	Reason error
}

func (e ErrNoTrustedState) Error() string {
	return fmt.Sprintf("no trusted consensus state at height %d: %v", e.Height, e.Reason)
}

func (e ErrNoTrustedState) Unwrap() error { return e.Reason }

// ErrInvalidProof wraps a membership proof that does not commit the packet
// to the trusted app hash.
type ErrInvalidProof struct {
	Seq    uint64
	Reason error
}

func (e ErrInvalidProof) Error() string {
	return fmt.Sprintf("invalid proof for packet %d: %v", e.Seq, e.Reason)
}

func (e ErrInvalidProof) Unwrap() error { return e.Reason }
