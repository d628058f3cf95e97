// Package bridge checks packets sent by the bridge contract of the Cosmos
// side against app hashes verified by the light client.
//
// A packet is received once: its commitment must be proven under the
// contract's storage at a height the light client trusts, it must not have
// timed out and its sequence must not have been received before.
//
// SendToTon packets are proven under their send commitment key. SendToCosmos
// packets travel the other way and are proven under their acknowledgement
// key, which the contract writes once it has processed them.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oraichain/tonbridge-core/crypto/ics23"
	"github.com/oraichain/tonbridge-core/libs/log"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/light/store"
	"github.com/oraichain/tonbridge-core/packet"
)

// ConsensusStates gives access to verified consensus states. *light.Client
// implements it.
type ConsensusStates interface {
	ConsensusState(height int64) (store.ConsensusState, error)
}

var _ ConsensusStates = (*light.Client)(nil)

// PacketProof is a packet together with the chained membership proof of its
// commitment at Height. Proofs are ordered innermost first: the contract
// store proof, then the multistore proof.
type PacketProof struct {
	Height int64
	Packet packet.Packet
	Proofs []*ics23.CommitmentProof
}

// Option sets a parameter of the receiver.
type Option func(*Receiver)

// ProofSpecs replaces the spec chain proofs are checked against. Default:
// ics23.DefaultSpecs().
func ProofSpecs(specs ...*ics23.ProofSpec) Option {
	return func(r *Receiver) {
		r.specs = specs
	}
}

// Logger sets the logger of the receiver.
func Logger(l log.Logger) Option {
	return func(r *Receiver) {
		r.logger = l
	}
}

// WithMetrics sets the metrics the receiver reports to.
func WithMetrics(m *light.Metrics) Option {
	return func(r *Receiver) {
		r.metrics = m
	}
}

// Receiver verifies and consumes packets of one bridge contract.
type Receiver struct {
	contract string
	specs    []*ics23.ProofSpec
	states   ConsensusStates
	seqs     *packet.SeqStore

	logger  log.Logger
	metrics *light.Metrics
}

// NewReceiver returns a receiver for packets of the bech32 contract,
// trusting the app hashes in states and remembering received sequences in
// seqs.
func NewReceiver(contract string, states ConsensusStates, seqs *packet.SeqStore, options ...Option) (*Receiver, error) {
	if _, err := packet.CommitmentKey(contract, 0); err != nil {
		return nil, fmt.Errorf("invalid bridge contract: %w", err)
	}
	if states == nil {
		return nil, errors.New("nil consensus states")
	}
	if seqs == nil {
		return nil, errors.New("nil sequence store")
	}

	r := &Receiver{
		contract: contract,
		specs:    ics23.DefaultSpecs(),
		states:   states,
		seqs:     seqs,
		logger:   log.NewNopLogger(),
		metrics:  light.NopMetrics(),
	}
	for _, o := range options {
		o(r)
	}

	for i, spec := range r.specs {
		if err := spec.ValidateBasic(); err != nil {
			return nil, fmt.Errorf("proof spec %d: %w", i, err)
		}
	}
	return r, nil
}

// Contract returns the bech32 address of the bridge contract.
func (r *Receiver) Contract() string {
	return r.contract
}

// VerifyPacket checks that proof commits its packet to the app hash trusted
// at proof.Height and that the packet has not timed out at now. It does not
// consume the sequence.
func (r *Receiver) VerifyPacket(ctx context.Context, proof PacketProof, now time.Time) error {
	_, err := r.verifyPacket(ctx, proof, now)
	return err
}

// Receive verifies proof like VerifyPacket and then records the packet
// sequence. A sequence can be received only once; a second attempt fails
// with packet.ErrPacketReplayed.
func (r *Receiver) Receive(ctx context.Context, proof PacketProof, now time.Time) error {
	commitment, err := r.verifyPacket(ctx, proof, now)
	if err != nil {
		return err
	}

	p := proof.Packet
	if err := r.seqs.MarkReceived(p.Kind(), p.Sequence(), commitment); err != nil {
		return err
	}

	r.metrics.PacketsVerified.Add(1)
	r.logger.Info("Received packet", "kind", p.Kind(), "seq", p.Sequence(), "height", proof.Height)
	return nil
}

func (r *Receiver) verifyPacket(ctx context.Context, proof PacketProof, now time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := proof.Packet
	if p == nil {
		return nil, ErrNoPacket
	}
	if timedOut(p.Timeout(), now) {
		return nil, ErrPacketTimedOut{Seq: p.Sequence(), Timeout: p.Timeout(), Now: now}
	}

	if proof.Height <= 0 {
		return nil, ErrNoTrustedState{Height: proof.Height, Reason: errors.New("negative or zero height")}
	}
	cs, err := r.states.ConsensusState(proof.Height)
	if err != nil {
		return nil, ErrNoTrustedState{Height: proof.Height, Reason: err}
	}

	key, err := r.commitmentKey(p)
	if err != nil {
		return nil, err
	}
	commitment, err := packet.Commitment(p)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Verify packet", "kind", p.Kind(), "seq", p.Sequence(), "height", proof.Height, "key", key)

	if len(proof.Proofs) != len(r.specs) {
		return nil, ErrInvalidProof{
			Seq:    p.Sequence(),
			Reason: fmt.Errorf("expected %d proofs, got %d", len(r.specs), len(proof.Proofs)),
		}
	}
	err = ics23.VerifyChainedMembership(cs.AppHash, r.specs, proof.Proofs, packet.KeyPath(key), commitment)
	if err != nil {
		return nil, ErrInvalidProof{Seq: p.Sequence(), Reason: err}
	}
	return commitment, nil
}

func (r *Receiver) commitmentKey(p packet.Packet) ([]byte, error) {
	switch p.Kind() {
	case packet.KindSendToTon:
		return packet.CommitmentKey(r.contract, p.Sequence())
	case packet.KindSendToCosmos:
		return packet.AckCommitmentKey(r.contract, p.Sequence())
	default:
		return nil, packet.ErrUnknownPacketKind{Magic: uint32(p.Kind())}
	}
}

// timedOut reports whether a packet with timeout, in unix seconds, has
// expired at now. Zero means no timeout.
func timedOut(timeout uint64, now time.Time) bool {
	if timeout == 0 || timeout > math.MaxInt64 {
		return false
	}
	return now.Unix() >= int64(timeout)
}
