package light

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oraichain/tonbridge-core/libs/log"
	tmmath "github.com/oraichain/tonbridge-core/libs/math"
	"github.com/oraichain/tonbridge-core/light/store"
	"github.com/oraichain/tonbridge-core/types"
)

const defaultPruningSize = 1000

// ErrNotInitialized is returned by a Client that has no root of trust yet.
var ErrNotInitialized = errors.New("light client has no trusted state")

// Option sets a parameter for the light client.
type Option func(*Client)

// SkippingVerification option configures the light client to skip blocks as
// long as {trustLevel} of the old validator set signed the new header.
//
// trustLevel - fraction of the old validator set (in terms of voting power),
// which must sign the new header in order for us to trust it. NOTE this only
// applies to non-adjacent headers.
func SkippingVerification(trustLevel tmmath.Fraction) Option {
	return func(c *Client) {
		c.params.TrustLevel = trustLevel
	}
}

// PruningSize option sets the maximum amount of consensus states that the
// light client stores. After every update the oldest ones above h are
// removed from the store.
// Default: 1000. A pruning size of 0 will not prune the light client at all.
func PruningSize(h uint16) Option {
	return func(c *Client) {
		c.pruningSize = h
	}
}

// Logger option can be used to set a logger for the client.
func Logger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// MaxClockDrift defines how much new header's time can drift into
// the future relative to the light clients local time. Default: 10s.
func MaxClockDrift(d time.Duration) Option {
	return func(c *Client) {
		c.params.MaxClockDrift = d
	}
}

// WithMetrics sets the metrics the client reports to.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is a light client of a single chain. It verifies light blocks
// handed to it by a relayer and keeps a consensus state per verified height
// in a trusted store.
//
// The trusted height only moves forward. A block between the first and the
// latest trusted height is verified from the closest stored state below it
// and is stored without changing the trusted state.
type Client struct {
	params      Params
	pruningSize uint16

	mtx sync.Mutex
	// Where trusted consensus states are stored.
	trustedStore store.Store
	// Highest trusted state from the store. nil until initialized.
	state *State

	logger  log.Logger
	metrics *Metrics
}

// NewClient returns a light client backed by trustedStore. If the store
// already holds consensus states the latest one becomes the trusted state,
// otherwise Initialize has to be called before any update is verified.
func NewClient(params Params, trustedStore store.Store, options ...Option) (*Client, error) {
	c := &Client{
		params:       params,
		pruningSize:  defaultPruningSize,
		trustedStore: trustedStore,
		logger:       log.NewNopLogger(),
		metrics:      NopMetrics(),
	}

	for _, o := range options {
		o(c)
	}

	if err := c.params.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if err := c.restoreTrustedState(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) restoreTrustedState() error {
	lastHeight, err := c.trustedStore.LastHeight()
	if err != nil {
		return fmt.Errorf("can't get last trusted height: %w", err)
	}
	if lastHeight <= 0 {
		return nil
	}

	cs, err := c.trustedStore.ConsensusState(lastHeight)
	if err != nil {
		return fmt.Errorf("can't get last trusted consensus state: %w", err)
	}
	vals, err := c.trustedStore.ValidatorSet(lastHeight)
	if err != nil {
		return fmt.Errorf("can't get last trusted validator set: %w", err)
	}

	c.state = &State{Params: c.params, Trusted: cs, Validators: vals}
	c.metrics.TrustedHeight.Set(float64(lastHeight))
	c.logger.Info("Restored trusted state", "height", lastHeight, "hash", cs.BlockHash)
	return nil
}

// Initialize roots trust in lb (see NewState) and stores it. Initializing a
// client whose store already holds the block named by opts is a no-op; any
// other root of trust on an initialized client is an error.
func (c *Client) Initialize(ctx context.Context, opts TrustOptions, lb *types.LightBlock, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.state != nil {
		cs, err := c.trustedStore.ConsensusState(opts.Height)
		if err == nil && bytes.Equal(cs.BlockHash, opts.Hash) {
			return nil
		}
		return fmt.Errorf("light client already trusts height %d, refusing new root of trust at %d",
			c.state.TrustedHeight(), opts.Height)
	}

	state, err := NewState(c.params, opts, lb, now)
	if err != nil {
		return err
	}

	if err := c.updateTrustedState(state); err != nil {
		return err
	}
	c.logger.Info("Initialized light client", "height", state.TrustedHeight(), "hash", state.Trusted.BlockHash)
	return nil
}

// VerifyLightBlock verifies lb and stores its consensus state.
//
// A block above the latest trusted height advances the trusted state. A
// block at an already stored height must have the stored hash
// (ErrConflictingHeaders otherwise). A block between the first and the
// latest trusted height is verified from the closest stored state below it.
// Blocks below the first stored height can't be verified.
func (c *Client) VerifyLightBlock(ctx context.Context, lb *types.LightBlock, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lb == nil || lb.SignedHeader == nil || lb.Header == nil {
		return ErrInvalidHeader{errors.New("incomplete light block")}
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.state == nil {
		return ErrNotInitialized
	}

	c.logger.Info("VerifyHeader", "height", lb.Height, "hash", lb.Hash())

	err := c.verifyLightBlock(lb, now)
	if err != nil {
		c.metrics.UpdatesRejected.Add(1)
		c.logger.Error("Can't verify", "height", lb.Height, "err", err)
		return err
	}
	c.metrics.UpdatesAccepted.Add(1)
	return nil
}

func (c *Client) verifyLightBlock(lb *types.LightBlock, now time.Time) error {
	latest := c.state.TrustedHeight()

	if lb.Height > latest {
		next, err := Advance(*c.state, lb, now)
		if err != nil {
			return err
		}
		return c.updateTrustedState(next)
	}

	stored, err := c.trustedStore.ConsensusState(lb.Height)
	switch {
	case err == nil:
		if !bytes.Equal(stored.BlockHash, lb.Hash()) {
			return ErrConflictingHeaders{Height: lb.Height, Stored: stored.BlockHash, Offered: lb.Hash()}
		}
		c.logger.Debug("Header has already been verified", "height", lb.Height)
		return nil
	case !errors.Is(err, store.ErrConsensusStateNotFound):
		return fmt.Errorf("can't get consensus state at height %d: %w", lb.Height, err)
	}

	firstHeight, err := c.trustedStore.FirstHeight()
	if err != nil {
		return fmt.Errorf("can't get first trusted height: %w", err)
	}
	if lb.Height < firstHeight {
		return ErrVerificationFailed{From: firstHeight, To: lb.Height,
			Reason: errors.New("height is below the first trusted height")}
	}

	base, err := c.trustedStore.ConsensusStateBefore(lb.Height)
	if err != nil {
		return fmt.Errorf("can't get consensus state before %d: %w", lb.Height, err)
	}
	baseVals, err := c.trustedStore.ValidatorSet(base.Height)
	if err != nil {
		return fmt.Errorf("can't get validator set at %d: %w", base.Height, err)
	}

	baseState := State{Params: c.params, Trusted: base, Validators: baseVals}
	verified, err := Advance(baseState, lb, now)
	if err != nil {
		return ErrVerificationFailed{From: base.Height, To: lb.Height, Reason: err}
	}

	if err := c.trustedStore.SaveConsensusState(verified.Trusted, verified.Validators); err != nil {
		return fmt.Errorf("failed to save consensus state: %w", err)
	}
	return c.prune()
}

func (c *Client) updateTrustedState(state State) error {
	if err := c.trustedStore.SaveConsensusState(state.Trusted, state.Validators); err != nil {
		return fmt.Errorf("failed to save trusted consensus state: %w", err)
	}
	if err := c.prune(); err != nil {
		return err
	}

	c.state = &state
	c.metrics.TrustedHeight.Set(float64(state.TrustedHeight()))
	return nil
}

func (c *Client) prune() error {
	if c.pruningSize == 0 {
		return nil
	}
	if err := c.trustedStore.Prune(c.pruningSize); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	return nil
}

// TrustedState returns the latest trusted state.
func (c *Client) TrustedState() (State, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.state == nil {
		return State{}, ErrNotInitialized
	}
	return *c.state, nil
}

// LastTrustedHeight returns the latest trusted height or -1 when the client
// is not initialized.
func (c *Client) LastTrustedHeight() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.state == nil {
		return -1
	}
	return c.state.TrustedHeight()
}

// ConsensusState returns the verified consensus state at height.
//
// If it is not found, store.ErrConsensusStateNotFound is returned.
func (c *Client) ConsensusState(height int64) (store.ConsensusState, error) {
	if height <= 0 {
		return store.ConsensusState{}, errors.New("negative or zero height")
	}
	return c.trustedStore.ConsensusState(height)
}

// ChainID returns the chain ID the light client was configured with.
func (c *Client) ChainID() string {
	return c.params.ChainID
}

// Metrics returns the metrics the client reports to.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}
