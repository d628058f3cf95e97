package light

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	tmmath "github.com/oraichain/tonbridge-core/libs/math"
	"github.com/oraichain/tonbridge-core/light/store"
	"github.com/oraichain/tonbridge-core/types"
)

const (
	defaultTrustingPeriod = 14 * 24 * time.Hour
	defaultMaxClockDrift  = 10 * time.Second
)

// Params are the fixed parameters a light client verifies updates with.
type Params struct {
	ChainID string
	// TrustingPeriod should be significantly less than the unbonding period
	// (e.g. unbonding period = 3 weeks, trusting period = 2 weeks).
	TrustingPeriod time.Duration
	// MaxClockDrift is how far a header time may run ahead of now.
	MaxClockDrift time.Duration
	// TrustLevel is the fraction of the trusted validator set that has to
	// sign a non-adjacent header.
	TrustLevel tmmath.Fraction
}

// DefaultParams returns Params for chainID with a two week trusting period,
// a 10s clock drift and the default trust level.
func DefaultParams(chainID string) Params {
	return Params{
		ChainID:        chainID,
		TrustingPeriod: defaultTrustingPeriod,
		MaxClockDrift:  defaultMaxClockDrift,
		TrustLevel:     DefaultTrustLevel,
	}
}

// ValidateBasic performs basic validation.
func (p Params) ValidateBasic() error {
	if p.ChainID == "" {
		return errors.New("empty chain id")
	}
	if p.TrustingPeriod <= 0 {
		return errors.New("negative or zero trusting period")
	}
	if p.MaxClockDrift < 0 {
		return errors.New("negative max clock drift")
	}
	return ValidateTrustLevel(p.TrustLevel)
}

// TrustOptions are the trust parameters needed when a new light client
// connects to the network or when an existing light client that has been
// offline for longer than the trusting period connects to the network.
//
// The expectation is the user will get this information from a trusted source
// like a validator, a friend, or a secure website. A more user friendly
// solution with trust tradeoffs is that we establish an https based protocol
// with a default end point that populates this information.
type TrustOptions struct {
	// Header height and hash are the subjective root of trust.
	Height int64
	Hash   tmbytes.HexBytes
}

// ValidateBasic performs basic validation.
func (opts TrustOptions) ValidateBasic() error {
	if opts.Height <= 0 {
		return errors.New("negative or zero height")
	}
	if err := types.ValidateHash(opts.Hash); err != nil {
		return fmt.Errorf("wrong hash: %w", err)
	}
	return nil
}

// State is the trusted state of a light client: the latest verified
// consensus state and the validator set that signed it.
type State struct {
	Params

	Trusted    store.ConsensusState
	Validators *types.ValidatorSet
}

// TrustedHeight returns the height of the latest trusted header.
func (s State) TrustedHeight() int64 { return s.Trusted.Height }

// NewState roots trust in lb. lb must match opts, be signed by more than two
// thirds of its own validators and still be within the trusting period.
func NewState(params Params, opts TrustOptions, lb *types.LightBlock, now time.Time) (State, error) {
	if err := params.ValidateBasic(); err != nil {
		return State{}, fmt.Errorf("invalid params: %w", err)
	}
	if err := opts.ValidateBasic(); err != nil {
		return State{}, fmt.Errorf("invalid TrustOptions: %w", err)
	}
	if lb == nil {
		return State{}, ErrInvalidHeader{errors.New("nil light block")}
	}
	if err := lb.ValidateBasic(params.ChainID); err != nil {
		return State{}, ErrInvalidHeader{err}
	}

	if lb.Height != opts.Height {
		return State{}, fmt.Errorf("expected header height %d, got %d", opts.Height, lb.Height)
	}
	if !bytes.Equal(lb.Hash(), opts.Hash) {
		return State{}, fmt.Errorf("expected header's hash %X, but got %X", opts.Hash, lb.Hash())
	}

	cs := store.NewConsensusState(lb.Header)
	if HeaderExpired(cs, params.TrustingPeriod, now) {
		return State{}, ErrOldHeaderExpired{cs.Time.Add(params.TrustingPeriod), now}
	}

	if err := types.VerifyCommitLight(params.ChainID, lb.ValidatorSet, lb.Commit.BlockID,
		lb.Height, lb.Commit); err != nil {
		return State{}, ErrInvalidHeader{err}
	}

	return State{Params: params, Trusted: cs, Validators: lb.ValidatorSet}, nil
}

// Advance verifies lb against state and returns the state trusting lb. The
// input state is never modified; on error it is returned unchanged so the
// caller may keep using it.
//
// lb must be above the trusted height (ErrNonMonotonicHeight otherwise).
// Adjacent blocks are checked against the trusted next validators hash,
// non-adjacent ones need TrustLevel of the trusted validators to have signed.
func Advance(state State, lb *types.LightBlock, now time.Time) (State, error) {
	if lb == nil || lb.SignedHeader == nil || lb.Header == nil || lb.Commit == nil {
		return state, ErrInvalidHeader{errors.New("incomplete light block")}
	}
	if lb.Height <= state.Trusted.Height {
		return state, ErrNonMonotonicHeight{Trusted: state.Trusted.Height, Got: lb.Height}
	}

	err := Verify(state.ChainID, state.Trusted, state.Validators, lb,
		state.TrustingPeriod, now, state.MaxClockDrift, state.TrustLevel)
	if err != nil {
		return state, err
	}

	next := state
	next.Trusted = store.NewConsensusState(lb.Header)
	next.Validators = lb.ValidatorSet
	return next, nil
}
