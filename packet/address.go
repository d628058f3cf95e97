package packet

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sigurn/crc16"
)

const (
	addressLen        = 33 // workchain byte + account id
	friendlyAddrLen   = 36
	tagBounceable     = 0x11
	tagNonBounceable  = 0x51
	tagTestnetFlag    = 0x80
	friendlyAddrChars = 48
)

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Address is a TON internal address (addr_std without anycast).
type Address struct {
	Workchain int8
	Account   [32]byte
}

// ParseAddress accepts the raw form "<workchain>:<64 hex>" and the 48
// character user friendly form in standard or url safe base64.
func ParseAddress(s string) (Address, error) {
	if strings.Contains(s, ":") {
		return parseRawAddress(s)
	}
	return parseFriendlyAddress(s)
}

// MustParseAddress is ParseAddress that panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func parseRawAddress(s string) (Address, error) {
	parts := strings.SplitN(s, ":", 2)
	wc, err := strconv.ParseInt(parts[0], 10, 8)
	if err != nil {
		return Address{}, fmt.Errorf("invalid workchain in %q: %w", s, err)
	}
	account, err := hex.DecodeString(parts[1])
	if err != nil {
		return Address{}, fmt.Errorf("invalid account id in %q: %w", s, err)
	}
	if len(account) != 32 {
		return Address{}, fmt.Errorf("account id must be 32 bytes, got %d", len(account))
	}
	addr := Address{Workchain: int8(wc)}
	copy(addr.Account[:], account)
	return addr, nil
}

func parseFriendlyAddress(s string) (Address, error) {
	if len(s) != friendlyAddrChars {
		return Address{}, fmt.Errorf("user friendly address must be %d characters, got %d", friendlyAddrChars, len(s))
	}
	enc := base64.StdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.URLEncoding
	}
	bz, err := enc.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(bz) != friendlyAddrLen {
		return Address{}, fmt.Errorf("user friendly address must be %d bytes, got %d", friendlyAddrLen, len(bz))
	}
	if tag := bz[0] &^ tagTestnetFlag; tag != tagBounceable && tag != tagNonBounceable {
		return Address{}, fmt.Errorf("unknown address tag %#x", bz[0])
	}
	if want, got := crc16.Checksum(bz[:34], crcTable), binary.BigEndian.Uint16(bz[34:]); want != got {
		return Address{}, fmt.Errorf("address checksum mismatch: %#04x != %#04x", got, want)
	}
	addr := Address{Workchain: int8(bz[1])}
	copy(addr.Account[:], bz[2:34])
	return addr, nil
}

// String returns the raw form.
func (a Address) String() string {
	return fmt.Sprintf("%d:%x", a.Workchain, a.Account[:])
}

// Friendly returns the url safe user friendly form.
func (a Address) Friendly(bounceable, testnet bool) string {
	bz := make([]byte, friendlyAddrLen)
	bz[0] = tagNonBounceable
	if bounceable {
		bz[0] = tagBounceable
	}
	if testnet {
		bz[0] |= tagTestnetFlag
	}
	bz[1] = byte(a.Workchain)
	copy(bz[2:34], a.Account[:])
	binary.BigEndian.PutUint16(bz[34:], crc16.Checksum(bz[:34], crcTable))
	return base64.URLEncoding.EncodeToString(bz)
}

// IsZero reports whether a is the zero address of the basechain.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns the fixed 33 byte layout used in packets.
func (a Address) Bytes() []byte {
	return a.appendTo(make([]byte, 0, addressLen))
}

func (a Address) appendTo(b []byte) []byte {
	b = append(b, byte(a.Workchain))
	return append(b, a.Account[:]...)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
