package packet

import (
	"fmt"
)

// UniversalSwapMsg is the memo a transfer carries when the tokens should be
// forwarded after arrival: each field is an u8 length prefixed string.
type UniversalSwapMsg struct {
	DestDenom    string `json:"dest_denom"`
	DestReceiver string `json:"dest_receiver"`
	DestChannel  string `json:"dest_channel"`
}

// Marshal returns the wire form of m.
func (m UniversalSwapMsg) Marshal() ([]byte, error) {
	b := make([]byte, 0, 3+len(m.DestDenom)+len(m.DestReceiver)+len(m.DestChannel))
	var err error
	for _, f := range []struct {
		name string
		val  string
	}{
		{"dest_denom", m.DestDenom},
		{"dest_receiver", m.DestReceiver},
		{"dest_channel", m.DestChannel},
	} {
		if b, err = appendBlob(b, f.name, []byte(f.val)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Unmarshal parses the wire form into m.
func (m *UniversalSwapMsg) Unmarshal(bz []byte) error {
	r := &reader{bz: bz}
	denom := r.blob("dest_denom")
	receiver := r.blob("dest_receiver")
	channel := r.blob("dest_channel")
	if r.err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSwapMsg, r.err)
	}
	if len(r.bz) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidSwapMsg, len(r.bz))
	}
	*m = UniversalSwapMsg{
		DestDenom:    string(denom),
		DestReceiver: string(receiver),
		DestChannel:  string(channel),
	}
	return nil
}
