package bridge_test

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/oraichain/tonbridge-core/bridge"
	"github.com/oraichain/tonbridge-core/crypto/ics23"
	"github.com/oraichain/tonbridge-core/libs/log"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/light/store"
	dbs "github.com/oraichain/tonbridge-core/light/store/db"
	"github.com/oraichain/tonbridge-core/packet"
	"github.com/oraichain/tonbridge-core/types"
)

const (
	chainID        = "Oraichain"
	bridgeContract = "orai1gzuxckyhl3qs2r4ccgy8nfh9p8200y6ug2kphp888lvlp7wkk23s6crhz7"
	provenHeight   = int64(28349621)
)

var (
	bTime = time.Date(2024, 7, 26, 8, 0, 0, 0, time.UTC)
	now   = bTime.Add(time.Hour)

	userAddr  = packet.MustParseAddress("EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N")
	denomAddr = packet.MustParseAddress("0:000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
)

func sibling(seed string) []byte {
	h := sha256.Sum256([]byte(seed))
	return h[:]
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// contractStoreProof proves key/value two levels deep in an IAVL shaped wasm
// store.
func contractStoreProof(key, value []byte) *ics23.ExistenceProof {
	return &ics23.ExistenceProof{
		Key:   key,
		Value: value,
		Leaf: &ics23.LeafOp{
			Hash:         ics23.HashOpSHA256,
			PrehashKey:   ics23.HashOpNoHash,
			PrehashValue: ics23.HashOpSHA256,
			Length:       ics23.LengthOpVarProto,
			Prefix:       []byte{0x00, 0x02, 0x02},
		},
		Path: []*ics23.InnerOp{
			{
				Hash:   ics23.HashOpSHA256,
				Prefix: []byte{0x02, 0x04, 0x02, 0x20},
				Suffix: concat([]byte{0x20}, sibling("right")),
			},
			{
				Hash:   ics23.HashOpSHA256,
				Prefix: concat([]byte{0x04, 0x08, 0x02, 0x20}, sibling("left"), []byte{0x20}),
			},
		},
	}
}

// multiStoreProof proves the wasm store root in the multistore.
func multiStoreProof(storeRoot []byte) *ics23.ExistenceProof {
	return &ics23.ExistenceProof{
		Key:   []byte(packet.StoreKey),
		Value: storeRoot,
		Leaf: &ics23.LeafOp{
			Hash:         ics23.HashOpSHA256,
			PrehashKey:   ics23.HashOpNoHash,
			PrehashValue: ics23.HashOpSHA256,
			Length:       ics23.LengthOpVarProto,
			Prefix:       []byte{0x00},
		},
		Path: []*ics23.InnerOp{
			{Hash: ics23.HashOpSHA256, Prefix: []byte{0x01}, Suffix: sibling("staking")},
			{Hash: ics23.HashOpSHA256, Prefix: concat([]byte{0x01}, sibling("bank"))},
		},
	}
}

// prove returns the chained proof of p at height and the app hash it
// commits to.
func prove(t *testing.T, p packet.Packet, height int64) (bridge.PacketProof, []byte) {
	var (
		key []byte
		err error
	)
	if p.Kind() == packet.KindSendToTon {
		key, err = packet.CommitmentKey(bridgeContract, p.Sequence())
	} else {
		key, err = packet.AckCommitmentKey(bridgeContract, p.Sequence())
	}
	require.NoError(t, err)
	commitment, err := packet.Commitment(p)
	require.NoError(t, err)

	inner := contractStoreProof(key, commitment)
	storeRoot, err := inner.Calculate()
	require.NoError(t, err)
	outer := multiStoreProof(storeRoot)
	appHash, err := outer.Calculate()
	require.NoError(t, err)

	return bridge.PacketProof{
		Height: height,
		Packet: p,
		Proofs: []*ics23.CommitmentProof{ics23.NewExistProof(inner), ics23.NewExistProof(outer)},
	}, appHash
}

func sendToTon(seq uint64) *packet.SendToTon {
	return &packet.SendToTon{
		Seq:              seq,
		TokenOrigin:      1,
		RemoteAmount:     *uint256.NewInt(10_000_000),
		TimeoutTimestamp: uint64(now.Add(time.Hour).Unix()),
		RemoteReceiver:   userAddr,
		RemoteDenom:      denomAddr,
		LocalSender:      []byte("orai12p0ywjwcpa500r9fuf0hly78zyjeltakrzkv0c"),
	}
}

// trustedClient returns a light client trusting a block at height whose app
// hash is appHash.
func trustedClient(t *testing.T, height int64, appHash []byte) *light.Client {
	vals, privs := types.DeterministicValidatorSet("bridge", 10, 10, 10)
	lb, err := types.MakeLightBlock(chainID, height, bTime, vals, vals, privs, []int{0, 1, 2}, appHash)
	require.NoError(t, err)

	c, err := light.NewClient(light.DefaultParams(chainID), dbs.New(dbm.NewMemDB(), chainID),
		light.Logger(log.TestingLogger()))
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background(),
		light.TrustOptions{Height: height, Hash: lb.Hash()}, lb, now))
	return c
}

func newReceiver(t *testing.T, states bridge.ConsensusStates, options ...bridge.Option) *bridge.Receiver {
	options = append([]bridge.Option{bridge.Logger(log.TestingLogger())}, options...)
	r, err := bridge.NewReceiver(bridgeContract, states, packet.NewSeqStore(dbm.NewMemDB(), "bridge"), options...)
	require.NoError(t, err)
	return r
}

func TestReceive(t *testing.T) {
	ctx := context.Background()
	proof, appHash := prove(t, sendToTon(1), provenHeight)

	packets := generic.NewCounter("packets")
	metrics := light.NopMetrics()
	metrics.PacketsVerified = packets

	r := newReceiver(t, trustedClient(t, provenHeight, appHash), bridge.WithMetrics(metrics))

	require.NoError(t, r.VerifyPacket(ctx, proof, now))
	require.NoError(t, r.Receive(ctx, proof, now))
	assert.EqualValues(t, 1, packets.Value())

	// a packet is received once
	err := r.Receive(ctx, proof, now)
	var replayed packet.ErrPacketReplayed
	require.True(t, errors.As(err, &replayed), "%v", err)
	assert.EqualValues(t, 1, replayed.Seq)
	assert.EqualValues(t, 1, packets.Value())

	// verification alone still passes
	assert.NoError(t, r.VerifyPacket(ctx, proof, now))
}

func TestReceiveAck(t *testing.T) {
	p := &packet.SendToCosmos{
		Seq:            4,
		LocalAmount:    *uint256.NewInt(1),
		RemoteReceiver: []byte("orai12p0ywjwcpa500r9fuf0hly78zyjeltakrzkv0c"),
		LocalDenom:     denomAddr,
		LocalSender:    userAddr,
	}
	proof, appHash := prove(t, p, provenHeight)
	r := newReceiver(t, trustedClient(t, provenHeight, appHash))
	require.NoError(t, r.Receive(context.Background(), proof, now))

	// the same proof does not hold for the send commitment of seq 4
	sendProof := proof
	sendProof.Packet = &packet.SendToTon{Seq: 4}
	err := r.VerifyPacket(context.Background(), sendProof, now)
	var invalid bridge.ErrInvalidProof
	assert.True(t, errors.As(err, &invalid), "%v", err)
}

func TestVerifyPacketErrors(t *testing.T) {
	proof, appHash := prove(t, sendToTon(1), provenHeight)
	r := newReceiver(t, trustedClient(t, provenHeight, appHash))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := map[string]struct {
		ctx    context.Context
		mutate func(p bridge.PacketProof) bridge.PacketProof
		now    time.Time
		check  func(t *testing.T, err error)
	}{
		"canceled context": {
			ctx: canceled,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.Canceled)
			},
		},
		"no packet": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				p.Packet = nil
				return p
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, bridge.ErrNoPacket)
			},
		},
		"timed out": {
			now: time.Unix(int64(sendToTon(1).TimeoutTimestamp), 0),
			check: func(t *testing.T, err error) {
				var timedOut bridge.ErrPacketTimedOut
				require.True(t, errors.As(err, &timedOut), "%v", err)
				assert.EqualValues(t, 1, timedOut.Seq)
			},
		},
		"untrusted height": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				p.Height = provenHeight + 1
				return p
			},
			check: func(t *testing.T, err error) {
				var noState bridge.ErrNoTrustedState
				require.True(t, errors.As(err, &noState), "%v", err)
				assert.Equal(t, provenHeight+1, noState.Height)
				assert.ErrorIs(t, err, store.ErrConsensusStateNotFound)
			},
		},
		"zero height": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				p.Height = 0
				return p
			},
			check: func(t *testing.T, err error) {
				var noState bridge.ErrNoTrustedState
				assert.True(t, errors.As(err, &noState), "%v", err)
			},
		},
		"tampered amount": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				pkt := sendToTon(1)
				pkt.RemoteAmount = *uint256.NewInt(10_000_001)
				p.Packet = pkt
				return p
			},
			check: func(t *testing.T, err error) {
				var membership ics23.ErrMembershipFailure
				require.True(t, errors.As(err, &membership), "%v", err)
				assert.Equal(t, 0, membership.Index)
			},
		},
		"other sequence": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				p.Packet = sendToTon(2)
				return p
			},
			check: func(t *testing.T, err error) {
				var membership ics23.ErrMembershipFailure
				assert.True(t, errors.As(err, &membership), "%v", err)
			},
		},
		"missing multistore proof": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				p.Proofs = p.Proofs[:1]
				return p
			},
			check: func(t *testing.T, err error) {
				var invalid bridge.ErrInvalidProof
				assert.True(t, errors.As(err, &invalid), "%v", err)
			},
		},
		"non-existence proof": {
			mutate: func(p bridge.PacketProof) bridge.PacketProof {
				p.Proofs = []*ics23.CommitmentProof{{Kind: ics23.ProofKindNonExist}, p.Proofs[1]}
				return p
			},
			check: func(t *testing.T, err error) {
				var unsupported ics23.ErrUnsupportedProofType
				require.True(t, errors.As(err, &unsupported), "%v", err)
				assert.Equal(t, ics23.ProofKindNonExist, unsupported.Kind)
			},
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			ctx := tc.ctx
			if ctx == nil {
				ctx = context.Background()
			}
			p := proof
			if tc.mutate != nil {
				p = tc.mutate(proof)
			}
			ts := tc.now
			if ts.IsZero() {
				ts = now
			}
			err := r.VerifyPacket(ctx, p, ts)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestVerifyPacketWrongAppHash(t *testing.T) {
	proof, _ := prove(t, sendToTon(1), provenHeight)
	r := newReceiver(t, trustedClient(t, provenHeight, sibling("other app hash")))

	err := r.VerifyPacket(context.Background(), proof, now)
	var mismatch ics23.ErrRootMismatch
	require.True(t, errors.As(err, &mismatch), "%v", err)
	assert.Equal(t, 1, mismatch.Index)
}

func TestNoTimeout(t *testing.T) {
	pkt := sendToTon(1)
	pkt.TimeoutTimestamp = 0
	proof, appHash := prove(t, pkt, provenHeight)
	r := newReceiver(t, trustedClient(t, provenHeight, appHash))
	assert.NoError(t, r.VerifyPacket(context.Background(), proof, now.Add(1000*time.Hour)))
}

func TestNewReceiver(t *testing.T) {
	seqs := packet.NewSeqStore(dbm.NewMemDB(), "bridge")
	client := trustedClient(t, 1, sibling("app"))

	_, err := bridge.NewReceiver("orai1invalid", client, seqs)
	assert.Error(t, err)
	_, err = bridge.NewReceiver(bridgeContract, nil, seqs)
	assert.Error(t, err)
	_, err = bridge.NewReceiver(bridgeContract, client, nil)
	assert.Error(t, err)
	_, err = bridge.NewReceiver(bridgeContract, client, seqs, bridge.ProofSpecs(&ics23.ProofSpec{}))
	assert.Error(t, err)

	r, err := bridge.NewReceiver(bridgeContract, client, seqs, bridge.ProofSpecs(ics23.DefaultSpecs()...))
	require.NoError(t, err)
	assert.Equal(t, bridgeContract, r.Contract())
}

func TestPacketProofJSON(t *testing.T) {
	proof, _ := prove(t, sendToTon(3), provenHeight)

	bz, err := json.Marshal(proof)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bz, &raw))
	assert.Equal(t, `"28349621"`, string(raw["height"]))

	var got bridge.PacketProof
	require.NoError(t, json.Unmarshal(bz, &got))
	assert.Equal(t, proof, got)

	_, err = json.Marshal(bridge.PacketProof{
		Packet: sendToTon(1),
		Proofs: []*ics23.CommitmentProof{{Kind: ics23.ProofKindBatch}},
	})
	assert.Error(t, err)

	assert.Error(t, json.Unmarshal([]byte(`{"height":"x","packet":"","proofs":[]}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`{"height":"1","packet":"DEADBEEF","proofs":[]}`), &got))
}
