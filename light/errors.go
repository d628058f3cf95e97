package light

import (
	"fmt"
	"time"

	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/types"
)

// ErrOldHeaderExpired means the old (trusted) header has expired according to
// the given trustingPeriod and current time. If so, the light client must be
// reset subjectively.
type ErrOldHeaderExpired struct {
	At  time.Time
	Now time.Time
}

func (e ErrOldHeaderExpired) Error() string {
	return fmt.Sprintf("old header has expired at %v (now: %v)", e.At, e.Now)
}

// ErrNewValSetCantBeTrusted means the new validator set cannot be trusted
// because < 1/3rd (+trustLevel+) of the old validator set has signed.
type ErrNewValSetCantBeTrusted struct {
	Reason types.ErrNotEnoughVotingPowerSigned
}

func (e ErrNewValSetCantBeTrusted) Error() string {
	return fmt.Sprintf("cant trust new val set: %v", e.Reason)
}

func (e ErrNewValSetCantBeTrusted) Unwrap() error { return e.Reason }

// ErrInvalidHeader means the header either failed the basic validation or
// commit is not signed by 2/3+.
type ErrInvalidHeader struct {
	Reason error
}

func (e ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid header: %v", e.Reason)
}

// Unwrap returns underlying reason.
func (e ErrInvalidHeader) Unwrap() error { return e.Reason }

// ErrNonMonotonicHeight is returned when an update would not move the
// trusted height forward.
type ErrNonMonotonicHeight struct {
	Trusted int64
	Got     int64
}

func (e ErrNonMonotonicHeight) Error() string {
	return fmt.Sprintf("update height %d does not exceed trusted height %d", e.Got, e.Trusted)
}

// ErrConflictingHeaders is returned when a verified block disagrees with the
// one already stored at the same height.
type ErrConflictingHeaders struct {
	Height  int64
	Stored  tmbytes.HexBytes
	Offered tmbytes.HexBytes
}

func (e ErrConflictingHeaders) Error() string {
	return fmt.Sprintf("header hash %X at height %d does not match stored %X",
		e.Offered, e.Height, e.Stored)
}

// ErrVerificationFailed means the verification from header #1 to header #2
// has failed due to some reason.
type ErrVerificationFailed struct {
	From   int64
	To     int64
	Reason error
}

// Unwrap returns underlying reason.
func (e ErrVerificationFailed) Unwrap() error {
	return e.Reason
}

func (e ErrVerificationFailed) Error() string {
	return fmt.Sprintf(
		"verify from #%d to #%d failed: %v",
		e.From, e.To, e.Reason)
}
