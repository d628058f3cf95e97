package types

import (
	"fmt"
	"time"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/ed25519"
	"github.com/oraichain/tonbridge-core/version"
)

// DeterministicValidatorSet returns a set with one ed25519 validator per
// power. Keys are derived from prefix, so the same call always yields the
// same set.
func DeterministicValidatorSet(prefix string, powers ...int64) (*ValidatorSet, []crypto.PrivKey) {
	valz := make([]*Validator, len(powers))
	privs := make([]crypto.PrivKey, len(powers))
	for i, p := range powers {
		priv := ed25519.GenPrivKeyFromSecret([]byte(fmt.Sprintf("%s-%d", prefix, i)))
		privs[i] = priv
		valz[i] = NewValidator(priv.PubKey(), p)
	}
	vals, err := NewValidatorSet(valz)
	if err != nil {
		panic(err)
	}
	return vals, privs
}

// MakeCommit builds a commit for blockID in validator order. Validators
// whose index is in signers precommit for the block, the rest are absent.
func MakeCommit(chainID string, height int64, round int32, blockID BlockID,
	vals *ValidatorSet, privs []crypto.PrivKey, signers []int, ts time.Time) (*Commit, error) {
	sigs := make([]CommitSig, vals.Size())
	for i := range sigs {
		sigs[i] = NewCommitSigAbsent()
	}
	commit := NewCommit(height, round, blockID, sigs)
	for _, idx := range signers {
		if idx < 0 || idx >= vals.Size() {
			return nil, fmt.Errorf("signer %d out of range", idx)
		}
		commit.Signatures[idx] = CommitSig{
			BlockIDFlag:      BlockIDFlagCommit,
			ValidatorAddress: vals.Validators[idx].Address,
			Timestamp:        ts,
		}
		sig, err := privs[idx].Sign(commit.VoteSignBytes(chainID, int32(idx)))
		if err != nil {
			return nil, err
		}
		commit.Signatures[idx].Signature = sig
	}
	return commit, nil
}

// MakeHeader returns a valid header committing to vals and nextVals.
func MakeHeader(chainID string, height int64, t time.Time, vals, nextVals *ValidatorSet, appHash []byte) *Header {
	h := &Header{
		Version:            version.Consensus{Block: version.BlockProtocol},
		ChainID:            chainID,
		Height:             height,
		Time:               t,
		LastBlockID:        MakeBlockID(crypto.Checksum([]byte(fmt.Sprintf("block-%d", height-1)))),
		ValidatorsHash:     vals.Hash(),
		NextValidatorsHash: nextVals.Hash(),
		AppHash:            appHash,
		ProposerAddress:    vals.Validators[0].Address,
	}
	return h
}

// MakeBlockID returns a complete BlockID for hash with a single part.
func MakeBlockID(hash []byte) BlockID {
	return BlockID{
		Hash: hash,
		PartSetHeader: PartSetHeader{
			Total: 1,
			Hash:  crypto.Checksum(append([]byte("parts"), hash...)),
		},
	}
}

// MakeLightBlock signs a header at height with the given signers and
// returns it with vals attached.
func MakeLightBlock(chainID string, height int64, t time.Time, vals, nextVals *ValidatorSet,
	privs []crypto.PrivKey, signers []int, appHash []byte) (*LightBlock, error) {
	h := MakeHeader(chainID, height, t, vals, nextVals, appHash)
	commit, err := MakeCommit(chainID, height, 0, MakeBlockID(h.Hash()), vals, privs, signers, t)
	if err != nil {
		return nil, err
	}
	return &LightBlock{
		SignedHeader: &SignedHeader{Header: h, Commit: commit},
		ValidatorSet: vals,
	}, nil
}
