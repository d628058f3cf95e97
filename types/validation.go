package types

import (
	"errors"
	"fmt"

	tmmath "github.com/oraichain/tonbridge-core/libs/math"
)

// QuorumReached reports whether power is strictly more than two thirds of
// total. Both are bounded by MaxTotalVotingPower, so the products fit.
func QuorumReached(power, total int64) bool {
	return power*3 > total*2
}

// CommitTally is the outcome of a pass over the signatures of a commit.
type CommitTally struct {
	VerifiedPower int64
	TotalPower    int64
	// OK is set once VerifiedPower passes two thirds of TotalPower.
	OK bool

	Verified int // signatures checked and counted
	Invalid  int // signatures that failed verification
	Skipped  int // absent and nil votes
}

// VerifyCommitSigs walks commit and adds up the power of every validator
// whose precommit for blockID verifies. Signature checks stop as soon as two
// thirds are reached.
//
// A bad signature only withholds that validator's power. Structural problems
// are errors whatever their position in the commit: a height or block id that
// does not match, a signature from an address outside the set
// (ErrUnknownValidator) or the same validator appearing twice
// (ErrDuplicateVote).
func (vals *ValidatorSet) VerifyCommitSigs(chainID string, blockID BlockID,
	height int64, commit *Commit) (CommitTally, error) {
	var tally CommitTally
	if vals.IsNilOrEmpty() {
		return tally, errors.New("nil validator set")
	}
	if commit == nil {
		return tally, errors.New("nil commit")
	}

	// Validate Height and BlockID.
	if height != commit.Height {
		return tally, NewErrInvalidCommitHeight(height, commit.Height)
	}
	if !blockID.Equals(commit.BlockID) {
		return tally, fmt.Errorf("invalid commit -- wrong block ID: want %v, got %v",
			blockID, commit.BlockID)
	}

	tally.TotalPower = vals.TotalVotingPower()
	signers, err := commitSigners(vals, commit, false)
	if err != nil {
		return tally, err
	}

	for idx, commitSig := range commit.Signatures {
		if commitSig.Absent() {
			tally.Skipped++
			continue // OK, some signatures can be absent.
		}
		val := signers[idx]

		// Nil votes do not attest to the block.
		if !commitSig.ForBlock() {
			tally.Skipped++
			continue
		}

		voteSignBytes := commit.VoteSignBytes(chainID, int32(idx))
		if !val.PubKey.VerifySignature(voteSignBytes, commitSig.Signature) {
			tally.Invalid++
			continue
		}

		tally.Verified++
		tally.VerifiedPower += val.VotingPower
		if QuorumReached(tally.VerifiedPower, tally.TotalPower) {
			tally.OK = true
			return tally, nil
		}
	}
	return tally, nil
}

// commitSigners resolves the validator behind every non-absent signature of
// commit, indexed like commit.Signatures. It looks at all of them before any
// signature is verified. With skipUnknown an address outside vals is left
// nil, otherwise it is an ErrUnknownValidator. A validator that signs twice
// is an ErrDuplicateVote.
func commitSigners(vals *ValidatorSet, commit *Commit, skipUnknown bool) ([]*Validator, error) {
	signers := make([]*Validator, len(commit.Signatures))
	seenVals := make(map[int32]int, len(commit.Signatures)) // validator index -> commit index
	for idx, commitSig := range commit.Signatures {
		if commitSig.Absent() {
			continue
		}
		valIdx, val := vals.GetByAddress(commitSig.ValidatorAddress)
		if val == nil {
			if skipUnknown {
				continue
			}
			return nil, ErrUnknownValidator{Index: idx, Address: commitSig.ValidatorAddress}
		}
		if firstIndex, ok := seenVals[valIdx]; ok {
			return nil, ErrDuplicateVote{Address: val.Address, First: firstIndex, Second: idx}
		}
		seenVals[valIdx] = idx
		signers[idx] = val
	}
	return signers, nil
}

// LIGHT CLIENT VERIFICATION METHODS

// VerifyCommitLight verifies +2/3 of the set had signed the given commit.
//
// This method is primarily used by the light client and does not check all the
// signatures.
func VerifyCommitLight(chainID string, vals *ValidatorSet, blockID BlockID,
	height int64, commit *Commit) error {
	tally, err := vals.VerifyCommitSigs(chainID, blockID, height, commit)
	if err != nil {
		return err
	}
	if !tally.OK {
		return ErrNotEnoughVotingPowerSigned{
			Got:    tally.VerifiedPower,
			Needed: tally.TotalPower * 2 / 3,
			Total:  tally.TotalPower,
		}
	}
	return nil
}

// VerifyCommitLightTrusting verifies that trustLevel of the validator set signed
// this commit.
//
// NOTE the given validators do not necessarily correspond to the validator set
// for this commit, but there may be some intersection. Signers that are not
// in vals are therefore skipped here rather than rejected.
//
// This method is primarily used by the light client and does not check all the
// signatures.
func VerifyCommitLightTrusting(chainID string, vals *ValidatorSet, commit *Commit, trustLevel tmmath.Fraction) error {
	// sanity checks
	if vals.IsNilOrEmpty() {
		return errors.New("nil validator set")
	}
	if trustLevel.Denominator == 0 {
		return errors.New("trustLevel has zero Denominator")
	}
	if commit == nil {
		return errors.New("nil commit")
	}

	// We don't know the validators that committed this block, so signers
	// outside vals are skipped. Double votes are rejected wherever they are.
	signers, err := commitSigners(vals, commit, true)
	if err != nil {
		return err
	}

	var (
		talliedVotingPower int64
		total              = vals.TotalVotingPower()
	)

	for idx, commitSig := range commit.Signatures {
		val := signers[idx]
		// No need to verify absent or nil votes, or votes from strangers.
		if !commitSig.ForBlock() || val == nil {
			continue
		}

		voteSignBytes := commit.VoteSignBytes(chainID, int32(idx))
		if !val.PubKey.VerifySignature(voteSignBytes, commitSig.Signature) {
			continue
		}

		talliedVotingPower += val.VotingPower
		enough, err := trustLevel.Exceeds(uint64(talliedVotingPower), uint64(total))
		if err != nil {
			return err
		}
		if enough {
			return nil
		}
	}

	needed := int64(uint64(total) * trustLevel.Numerator / trustLevel.Denominator)
	return ErrNotEnoughVotingPowerSigned{Got: talliedVotingPower, Needed: needed, Total: total}
}
