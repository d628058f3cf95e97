package light

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	tmmath "github.com/oraichain/tonbridge-core/libs/math"
	"github.com/oraichain/tonbridge-core/light/store"
	"github.com/oraichain/tonbridge-core/types"
)

var (
	// DefaultTrustLevel - new header can be trusted if at least one correct
	// validator signed it.
	DefaultTrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 3}
)

// VerifyNonAdjacent verifies non-adjacent untrusted light block against the
// trusted consensus state. It ensures that:
//
//	a) trusted can still be trusted (if not, ErrOldHeaderExpired is returned)
//	b) untrusted is valid (if not, ErrInvalidHeader is returned)
//	c) trustLevel ([1/3, 1]) of trustedVals signed correctly (if not,
//	   ErrNewValSetCantBeTrusted is returned)
//	d) more than 2/3 of untrusted.ValidatorSet have signed the new header
//	   (otherwise, ErrInvalidHeader is returned)
//	e) headers are non-adjacent.
//
// maxClockDrift defines how much untrusted.Time can drift into the future.
func VerifyNonAdjacent(
	chainID string,
	trusted store.ConsensusState, // height=X
	trustedVals *types.ValidatorSet, // height=X
	untrusted *types.LightBlock, // height=Y
	trustingPeriod time.Duration,
	now time.Time,
	maxClockDrift time.Duration,
	trustLevel tmmath.Fraction) error {

	if untrusted.Height == trusted.Height+1 {
		return errors.New("headers must be non adjacent in height")
	}

	if HeaderExpired(trusted, trustingPeriod, now) {
		return ErrOldHeaderExpired{trusted.Time.Add(trustingPeriod), now}
	}

	if err := verifyNewHeaderAndVals(chainID, untrusted, trusted, now, maxClockDrift); err != nil {
		return ErrInvalidHeader{err}
	}

	// Ensure that +`trustLevel` (default 1/3) or more of last trusted validators signed correctly.
	err := types.VerifyCommitLightTrusting(chainID, trustedVals, untrusted.Commit, trustLevel)
	if err != nil {
		var notEnough types.ErrNotEnoughVotingPowerSigned
		if errors.As(err, &notEnough) {
			return ErrNewValSetCantBeTrusted{notEnough}
		}
		return ErrInvalidHeader{err}
	}

	// Ensure that +2/3 of new validators signed correctly.
	//
	// NOTE: this should always be the last check because untrusted validators
	// can be intentionally made very large to DOS the light client.
	if err := types.VerifyCommitLight(chainID, untrusted.ValidatorSet, untrusted.Commit.BlockID,
		untrusted.Height, untrusted.Commit); err != nil {
		return ErrInvalidHeader{err}
	}

	return nil
}

// VerifyAdjacent verifies directly adjacent untrusted light block against
// the trusted consensus state. It ensures that:
//
//	a) trusted can still be trusted (if not, ErrOldHeaderExpired is returned)
//	b) untrusted is valid (if not, ErrInvalidHeader is returned)
//	c) untrusted.ValidatorsHash equals trusted.NextValidatorsHash
//	d) more than 2/3 of new validators have signed the new header
//	   (otherwise, ErrInvalidHeader is returned)
//	e) headers are adjacent.
//
// maxClockDrift defines how much untrusted.Time can drift into the future.
func VerifyAdjacent(
	chainID string,
	trusted store.ConsensusState, // height=X
	untrusted *types.LightBlock, // height=X+1
	trustingPeriod time.Duration,
	now time.Time,
	maxClockDrift time.Duration) error {

	if untrusted.Height != trusted.Height+1 {
		return errors.New("headers must be adjacent in height")
	}

	if HeaderExpired(trusted, trustingPeriod, now) {
		return ErrOldHeaderExpired{trusted.Time.Add(trustingPeriod), now}
	}

	if err := verifyNewHeaderAndVals(chainID, untrusted, trusted, now, maxClockDrift); err != nil {
		return ErrInvalidHeader{err}
	}

	// Check the validator hashes are the same
	if !bytes.Equal(untrusted.ValidatorsHash, trusted.NextValidatorsHash) {
		return ErrInvalidHeader{fmt.Errorf(
			"expected old header next validators (%X) to match those from new header (%X)",
			trusted.NextValidatorsHash,
			untrusted.ValidatorsHash,
		)}
	}

	// Ensure that +2/3 of new validators signed correctly.
	if err := types.VerifyCommitLight(chainID, untrusted.ValidatorSet, untrusted.Commit.BlockID,
		untrusted.Height, untrusted.Commit); err != nil {
		return ErrInvalidHeader{err}
	}

	return nil
}

// Verify combines both VerifyAdjacent and VerifyNonAdjacent functions.
func Verify(
	chainID string,
	trusted store.ConsensusState, // height=X
	trustedVals *types.ValidatorSet, // height=X
	untrusted *types.LightBlock, // height=Y
	trustingPeriod time.Duration,
	now time.Time,
	maxClockDrift time.Duration,
	trustLevel tmmath.Fraction) error {

	if untrusted.Height != trusted.Height+1 {
		return VerifyNonAdjacent(chainID, trusted, trustedVals, untrusted,
			trustingPeriod, now, maxClockDrift, trustLevel)
	}

	return VerifyAdjacent(chainID, trusted, untrusted, trustingPeriod, now, maxClockDrift)
}

func verifyNewHeaderAndVals(
	chainID string,
	untrusted *types.LightBlock,
	trusted store.ConsensusState,
	now time.Time,
	maxClockDrift time.Duration) error {

	if err := untrusted.ValidateBasic(chainID); err != nil {
		return fmt.Errorf("untrusted.ValidateBasic failed: %w", err)
	}

	if untrusted.Height <= trusted.Height {
		return fmt.Errorf("expected new header height %d to be greater than one of old header %d",
			untrusted.Height,
			trusted.Height)
	}

	if !untrusted.Time.After(trusted.Time) {
		return fmt.Errorf("expected new header time %v to be after old header time %v",
			untrusted.Time,
			trusted.Time)
	}

	if !untrusted.Time.Before(now.Add(maxClockDrift)) {
		return fmt.Errorf("new header has a time from the future %v (now: %v; max clock drift: %v)",
			untrusted.Time,
			now,
			maxClockDrift)
	}

	return nil
}

// ValidateTrustLevel checks that trustLevel is within the allowed range [1/3,
// 1]. If not, it returns an error. 1/3 is the minimum amount of trust needed
// which does not break the security model.
func ValidateTrustLevel(lvl tmmath.Fraction) error {
	if lvl.Numerator*3 < lvl.Denominator || // < 1/3
		lvl.Numerator > lvl.Denominator || // > 1
		lvl.Denominator == 0 {
		return fmt.Errorf("trustLevel must be within [1/3, 1], given %v", lvl)
	}
	return nil
}

// HeaderExpired return true if the given consensus state expired.
func HeaderExpired(cs store.ConsensusState, trustingPeriod time.Duration, now time.Time) bool {
	expirationTime := cs.Time.Add(trustingPeriod)
	return !expirationTime.After(now)
}
