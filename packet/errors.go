package packet

import (
	"errors"
	"fmt"
)

// ErrUnknownPacketKind is returned when a packet starts with a magic no
// packet kind uses. The whole message must be rejected.
type ErrUnknownPacketKind struct {
	Magic uint32
}

func (e ErrUnknownPacketKind) Error() string {
	return fmt.Sprintf("unknown packet kind %#08x", e.Magic)
}

// ErrPacketReplayed is returned when a sequence has already been received.
type ErrPacketReplayed struct {
	Seq uint64
}

func (e ErrPacketReplayed) Error() string {
	return fmt.Sprintf("packet with sequence %d was already received", e.Seq)
}

// ErrInvalidSwapMsg is returned for a universal swap payload that does not
// parse.
var ErrInvalidSwapMsg = errors.New("invalid universal swap message")
