package types

import (
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/merkle"
	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/libs/protoio"
	"github.com/oraichain/tonbridge-core/version"
)

func TestHeaderHashFixture(t *testing.T) {
	h := fixtureHeader(t)
	require.NoError(t, h.ValidateBasic())

	assert.Equal(t, int64(20082942), h.Height)
	assert.Equal(t, fixtureHeaderHash, h.Hash().String())
	assert.Equal(t, []byte(h.Hash()), merkle.HashFromByteSlices(h.Leaves()))
}

func TestHeaderJSONRoundTrip(t *testing.T) {
	h := fixtureHeader(t)
	bz, err := json.Marshal(h)
	require.NoError(t, err)

	var h2 Header
	require.NoError(t, json.Unmarshal(bz, &h2))
	assert.Equal(t, h.Hash(), h2.Hash())
	assert.Contains(t, string(bz), `"height":"20082942"`)
}

func TestHeaderHashCoversEveryField(t *testing.T) {
	other := tmbytes.HexBytes(crypto.Checksum([]byte("other")))
	mutations := map[string]func(h *Header){
		"version":         func(h *Header) { h.Version.App = 1 },
		"chain id":        func(h *Header) { h.ChainID = "Oraichain-2" },
		"height":          func(h *Header) { h.Height++ },
		"time":            func(h *Header) { h.Time = h.Time.Add(time.Nanosecond) },
		"last block id":   func(h *Header) { h.LastBlockID.PartSetHeader.Total = 2 },
		"last commit":     func(h *Header) { h.LastCommitHash = other },
		"data":            func(h *Header) { h.DataHash = other },
		"validators":      func(h *Header) { h.ValidatorsHash = other },
		"next validators": func(h *Header) { h.NextValidatorsHash = other },
		"consensus":       func(h *Header) { h.ConsensusHash = other },
		"app":             func(h *Header) { h.AppHash = other },
		"last results":    func(h *Header) { h.LastResultsHash = other },
		"evidence":        func(h *Header) { h.EvidenceHash = other },
		"proposer":        func(h *Header) { h.ProposerAddress = other[:crypto.AddressSize] },
	}
	require.Len(t, mutations, headerFields)

	for name, mutate := range mutations {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			h := fixtureHeader(t)
			mutate(h)
			hash := h.Hash()
			assert.NotEqual(t, fixtureHeaderHash, hash.String())
			assert.Equal(t, []byte(hash), merkle.HashFromByteSlices(h.Leaves()))
		})
	}
}

func TestHeaderHashNilWithoutValidators(t *testing.T) {
	var h *Header
	assert.Nil(t, h.Hash())

	h = fixtureHeader(t)
	h.ValidatorsHash = nil
	assert.Nil(t, h.Hash())
}

func TestHeaderValidateBasic(t *testing.T) {
	testCases := []struct {
		name      string
		malleate  func(h *Header)
		expectErr bool
	}{
		{"valid", func(h *Header) {}, false},
		{"wrong block protocol", func(h *Header) { h.Version.Block = 10 }, true},
		{"long chain id", func(h *Header) { h.ChainID = string(make([]byte, MaxChainIDLen+1)) }, true},
		{"zero height", func(h *Header) { h.Height = 0 }, true},
		{"negative height", func(h *Header) { h.Height = -1 }, true},
		{"short last block hash", func(h *Header) { h.LastBlockID.Hash = []byte{1} }, true},
		{"short data hash", func(h *Header) { h.DataHash = []byte{1} }, true},
		{"missing validators hash", func(h *Header) { h.ValidatorsHash = nil }, true},
		{"short proposer", func(h *Header) { h.ProposerAddress = []byte{1} }, true},
		{"empty app hash", func(h *Header) { h.AppHash = nil }, false},
		{"odd app hash", func(h *Header) { h.AppHash = []byte{1, 2, 3} }, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := fixtureHeader(t)
			tc.malleate(h)
			err := h.ValidateBasic()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBlockIDEncoding(t *testing.T) {
	hash := []byte("01234567890123456789012345678901")
	bid := BlockID{Hash: hash, PartSetHeader: PartSetHeader{Total: 1, Hash: hash}}
	bz := protoio.Marshal(bid)
	assert.Len(t, bz, 72)
	assert.Equal(t, "0a20", hex.EncodeToString(bz[:2]))
	assert.Equal(t, "122408011220", hex.EncodeToString(bz[34:40]))

	// The part set header is written even when empty.
	assert.Equal(t, []byte{0x12, 0x00}, protoio.Marshal(BlockID{}))
	assert.True(t, BlockID{}.IsNil())
	assert.True(t, bid.IsComplete())
	assert.False(t, BlockID{Hash: hash}.IsComplete())
}

func TestBlockIDEquals(t *testing.T) {
	a := MakeBlockID(crypto.Checksum([]byte("a")))
	b := MakeBlockID(crypto.Checksum([]byte("b")))
	assert.True(t, a.Equals(a))
	assert.False(t, a.Equals(b))
	assert.NotEqual(t, a.Key(), b.Key())
	assert.NoError(t, a.ValidateBasic())
}

func TestCommitSigValidateBasic(t *testing.T) {
	addr := crypto.AddressHash([]byte("val"))
	testCases := []struct {
		name      string
		sig       CommitSig
		expectErr bool
	}{
		{"absent", NewCommitSigAbsent(), false},
		{"absent with rpc zero time", CommitSig{BlockIDFlag: BlockIDFlagAbsent, Timestamp: zeroTime}, false},
		{"absent with address", CommitSig{BlockIDFlag: BlockIDFlagAbsent, ValidatorAddress: addr}, true},
		{"commit", NewCommitSigForBlock([]byte{1}, addr, time.Now()), false},
		{"commit without signature", NewCommitSigForBlock(nil, addr, time.Now()), true},
		{"commit short address", NewCommitSigForBlock([]byte{1}, addr[:5], time.Now()), true},
		{"commit big signature", NewCommitSigForBlock(make([]byte, 65), addr, time.Now()), true},
		{"unknown flag", CommitSig{BlockIDFlag: 7}, true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sig.ValidateBasic()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommitGetVote(t *testing.T) {
	blockID := MakeBlockID(crypto.Checksum([]byte("block")))
	addr := crypto.AddressHash([]byte("val"))
	ts := time.Date(2024, 5, 6, 7, 34, 41, 0, time.UTC)
	commit := NewCommit(10, 1, blockID, []CommitSig{
		NewCommitSigForBlock([]byte{1}, addr, ts),
		{BlockIDFlag: BlockIDFlagNil, ValidatorAddress: addr, Timestamp: ts, Signature: []byte{2}},
		NewCommitSigAbsent(),
	})
	require.NoError(t, commit.ValidateBasic())

	v := commit.GetVote(0)
	assert.Equal(t, PrecommitType, v.Type)
	assert.Equal(t, int64(10), v.Height)
	assert.Equal(t, int32(1), v.Round)
	assert.True(t, v.BlockID.Equals(blockID))
	assert.Equal(t, ts, v.Timestamp)

	assert.True(t, commit.GetVote(1).BlockID.IsNil())
	assert.NotEqual(t, commit.VoteSignBytes("c", 0), commit.VoteSignBytes("c", 1))
	assert.Equal(t, 3, commit.Size())
}

func TestCommitValidateBasic(t *testing.T) {
	commit := NewCommit(1, 0, BlockID{}, nil)
	assert.Error(t, commit.ValidateBasic())

	commit.BlockID = MakeBlockID(crypto.Checksum([]byte("x")))
	assert.Error(t, commit.ValidateBasic(), "no signatures")

	commit.Signatures = []CommitSig{NewCommitSigAbsent()}
	assert.NoError(t, commit.ValidateBasic())

	commit.Round = -1
	assert.Error(t, commit.ValidateBasic())
}

func TestBlockProtocolIsV034(t *testing.T) {
	assert.EqualValues(t, 11, version.BlockProtocol)
}
