package relay

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/ed25519"
	"github.com/oraichain/tonbridge-core/crypto/encoding"
	"github.com/oraichain/tonbridge-core/crypto/secp256k1"
	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
	"github.com/oraichain/tonbridge-core/libs/cell"
	"github.com/oraichain/tonbridge-core/types"
	"github.com/oraichain/tonbridge-core/version"
)

var zeroHash = make([]byte, crypto.HashSize)

func storeHash(b *cell.Builder, h []byte) error {
	if len(h) != 0 && len(h) != crypto.HashSize {
		return fmt.Errorf("hash must be empty or %d bytes, got %d", crypto.HashSize, len(h))
	}
	b.StoreFixed(h, crypto.HashSize)
	return nil
}

func loadHash(s *cell.Slice) tmbytes.HexBytes {
	h := s.LoadBytes(crypto.HashSize)
	if h == nil || bytes.Equal(h, zeroHash) {
		return nil
	}
	return h
}

func u32(name string, v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%s %d does not fit in 32 bits", name, v)
	}
	return uint32(v), nil
}

func encodeBlockID(id types.BlockID) (*cell.Cell, error) {
	if id.PartSetHeader.Total > math.MaxUint8 {
		return nil, fmt.Errorf("part set total %d does not fit in 8 bits", id.PartSetHeader.Total)
	}
	b := cell.NewBuilder()
	if err := storeHash(b, id.Hash); err != nil {
		return nil, fmt.Errorf("block id: %w", err)
	}
	if err := storeHash(b, id.PartSetHeader.Hash); err != nil {
		return nil, fmt.Errorf("part set header: %w", err)
	}
	return b.StoreUint8(uint8(id.PartSetHeader.Total)).Build()
}

func decodeBlockID(c *cell.Cell) (types.BlockID, error) {
	s := c.BeginParse()
	id := types.BlockID{Hash: loadHash(s)}
	id.PartSetHeader.Hash = loadHash(s)
	id.PartSetHeader.Total = uint32(s.LoadUint8())
	if err := s.End(); err != nil {
		return types.BlockID{}, fmt.Errorf("block id: %w", err)
	}
	return id, nil
}

func hashesCell(hashes ...tmbytes.HexBytes) (*cell.Cell, error) {
	b := cell.NewBuilder()
	for i, h := range hashes {
		hb := cell.NewBuilder()
		if err := storeHash(hb, h); err != nil {
			return nil, fmt.Errorf("hash %d: %w", i, err)
		}
		c, err := hb.Build()
		if err != nil {
			return nil, err
		}
		b.StoreRef(c)
	}
	return b.Build()
}

func loadHashes(c *cell.Cell, out ...*tmbytes.HexBytes) error {
	s := c.BeginParse()
	for i := range out {
		ref := s.LoadRef()
		if ref == nil {
			return s.Err()
		}
		hs := ref.BeginParse()
		*out[i] = loadHash(hs)
		if err := hs.End(); err != nil {
			return fmt.Errorf("hash %d: %w", i, err)
		}
	}
	return s.End()
}

// EncodeHeader lays out a header as three references: the block info, the
// first four hashes and the last four hashes.
//
//	info      ref version, ref chain id, height u32, ref time, ref last block id,
//	          proposer address
//	version   block u32, then app u32 when it is not zero
func EncodeHeader(h *types.Header) (*cell.Cell, error) {
	if h == nil {
		return nil, errors.New("nil header")
	}
	height, err := u32("height", h.Height)
	if err != nil {
		return nil, err
	}
	if h.Version.Block > math.MaxUint32 {
		return nil, fmt.Errorf("block version %d does not fit in 32 bits", h.Version.Block)
	}
	vb := cell.NewBuilder().StoreUint32(uint32(h.Version.Block))
	if h.Version.App != 0 {
		if h.Version.App > math.MaxUint32 {
			return nil, fmt.Errorf("app version %d does not fit in 32 bits", h.Version.App)
		}
		vb.StoreUint32(uint32(h.Version.App))
	}
	versionCell, err := vb.Build()
	if err != nil {
		return nil, err
	}
	chainID, err := cell.NewBuilder().StoreBytes([]byte(h.ChainID)).Build()
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	ts, err := cell.NewBuilder().StoreTime(h.Time).Build()
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}
	lastBlockID, err := encodeBlockID(h.LastBlockID)
	if err != nil {
		return nil, fmt.Errorf("last %w", err)
	}
	info, err := cell.NewBuilder().
		StoreRef(versionCell).
		StoreRef(chainID).
		StoreUint32(height).
		StoreRef(ts).
		StoreRef(lastBlockID).
		StoreBytes(h.ProposerAddress).
		Build()
	if err != nil {
		return nil, fmt.Errorf("header info: %w", err)
	}

	first, err := hashesCell(h.LastCommitHash, h.DataHash, h.ValidatorsHash, h.NextValidatorsHash)
	if err != nil {
		return nil, err
	}
	second, err := hashesCell(h.ConsensusHash, h.AppHash, h.LastResultsHash, h.EvidenceHash)
	if err != nil {
		return nil, err
	}
	return cell.NewBuilder().StoreRef(info).StoreRef(first).StoreRef(second).Build()
}

// DecodeHeader reads a header laid out by EncodeHeader.
func DecodeHeader(c *cell.Cell) (*types.Header, error) {
	s := c.BeginParse()
	info, first, second := s.LoadRef(), s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	h := new(types.Header)
	is := info.BeginParse()
	versionCell, chainID := is.LoadRef(), is.LoadRef()
	h.Height = int64(is.LoadUint32())
	ts, lastBlockID := is.LoadRef(), is.LoadRef()
	h.ProposerAddress = is.LoadRest()
	if err := is.Err(); err != nil {
		return nil, fmt.Errorf("header info: %w", err)
	}

	vs := versionCell.BeginParse()
	h.Version.Block = version.Protocol(vs.LoadUint32())
	if vs.RemainingBytes() > 0 {
		h.Version.App = version.Protocol(vs.LoadUint32())
	}
	if err := vs.End(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	h.ChainID = string(chainID.BeginParse().LoadRest())
	if len(chainID.Refs()) != 0 {
		return nil, errors.New("chain id: unexpected references")
	}
	tsSlice := ts.BeginParse()
	h.Time = tsSlice.LoadTime()
	if err := tsSlice.End(); err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}
	var err error
	if h.LastBlockID, err = decodeBlockID(lastBlockID); err != nil {
		return nil, fmt.Errorf("last %w", err)
	}

	if err := loadHashes(first, &h.LastCommitHash, &h.DataHash, &h.ValidatorsHash, &h.NextValidatorsHash); err != nil {
		return nil, fmt.Errorf("header hashes: %w", err)
	}
	if err := loadHashes(second, &h.ConsensusHash, &h.AppHash, &h.LastResultsHash, &h.EvidenceHash); err != nil {
		return nil, fmt.Errorf("header hashes: %w", err)
	}
	return h, nil
}

// EncodeValidators lays out a validator set as a list in set order. An item
// holds the address, the voting power as u32 and a reference to the public
// key bytes.
func EncodeValidators(vals *types.ValidatorSet) (*cell.Cell, error) {
	if vals.IsNilOrEmpty() {
		return nil, errors.New("nil or empty validator set")
	}
	items := make([]*cell.Cell, len(vals.Validators))
	for i, v := range vals.Validators {
		power, err := u32("voting power", v.VotingPower)
		if err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
		if v.PubKey == nil {
			return nil, fmt.Errorf("validator %d: nil public key", i)
		}
		pk, err := cell.NewBuilder().StoreBytes(v.PubKey.Bytes()).Build()
		if err != nil {
			return nil, fmt.Errorf("validator %d public key: %w", i, err)
		}
		items[i], err = cell.NewBuilder().
			StoreFixed(v.Address, crypto.AddressSize).
			StoreUint32(power).
			StoreRef(pk).
			Build()
		if err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
	}
	return cell.List(items)
}

func pubKeyFromBytes(bz []byte) (crypto.PubKey, error) {
	switch len(bz) {
	case ed25519.PubKeySize:
		return encoding.PubKeyFromTypeAndBytes(ed25519.KeyType, bz)
	case secp256k1.PubKeySize:
		return encoding.PubKeyFromTypeAndBytes(secp256k1.KeyType, bz)
	default:
		return nil, fmt.Errorf("unsupported public key of %d bytes", len(bz))
	}
}

// DecodeValidators reads a validator set laid out by EncodeValidators. The
// address of every validator must match its public key.
func DecodeValidators(c *cell.Cell) (*types.ValidatorSet, error) {
	items, err := cell.ListItems(c)
	if err != nil {
		return nil, fmt.Errorf("validators: %w", err)
	}
	valz := make([]*types.Validator, len(items))
	for i, item := range items {
		s := item.BeginParse()
		addr := s.LoadBytes(crypto.AddressSize)
		power := s.LoadUint32()
		pkCell := s.LoadRef()
		if err := s.End(); err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
		pk, err := pubKeyFromBytes(pkCell.Data())
		if err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
		v := types.NewValidator(pk, int64(power))
		if !bytes.Equal(v.Address, addr) {
			return nil, fmt.Errorf("validator %d: address %X does not match its public key", i, addr)
		}
		valz[i] = v
	}
	return types.NewValidatorSet(valz)
}

// EncodeCommit lays out a commit:
//
//	commit   height u32, round u32, ref block id, ref signature list
//	sig      flag u8, validator address, ref timestamp, signature
//
// Absent signatures carry neither address nor signature.
func EncodeCommit(commit *types.Commit) (*cell.Cell, error) {
	if commit == nil {
		return nil, errors.New("nil commit")
	}
	height, err := u32("height", commit.Height)
	if err != nil {
		return nil, err
	}
	round, err := u32("round", int64(commit.Round))
	if err != nil {
		return nil, err
	}
	blockID, err := encodeBlockID(commit.BlockID)
	if err != nil {
		return nil, err
	}
	sigs := make([]*cell.Cell, len(commit.Signatures))
	for i, sig := range commit.Signatures {
		ts, err := cell.NewBuilder().StoreTime(sig.Timestamp).Build()
		if err != nil {
			return nil, fmt.Errorf("signature %d time: %w", i, err)
		}
		b := cell.NewBuilder().StoreUint8(uint8(sig.BlockIDFlag))
		if sig.BlockIDFlag != types.BlockIDFlagAbsent {
			b.StoreFixed(sig.ValidatorAddress, crypto.AddressSize)
		}
		b.StoreRef(ts)
		if sig.BlockIDFlag != types.BlockIDFlagAbsent {
			b.StoreBytes(sig.Signature)
		}
		if sigs[i], err = b.Build(); err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
	}
	list, err := cell.List(sigs)
	if err != nil {
		return nil, err
	}
	return cell.NewBuilder().
		StoreUint32(height).
		StoreUint32(round).
		StoreRef(blockID).
		StoreRef(list).
		Build()
}

// DecodeCommit reads a commit laid out by EncodeCommit.
func DecodeCommit(c *cell.Cell) (*types.Commit, error) {
	s := c.BeginParse()
	commit := &types.Commit{
		Height: int64(s.LoadUint32()),
	}
	round := s.LoadUint32()
	blockID, list := s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if round > math.MaxInt32 {
		return nil, fmt.Errorf("round %d out of range", round)
	}
	commit.Round = int32(round)
	var err error
	if commit.BlockID, err = decodeBlockID(blockID); err != nil {
		return nil, err
	}

	items, err := cell.ListItems(list)
	if err != nil {
		return nil, fmt.Errorf("signatures: %w", err)
	}
	commit.Signatures = make([]types.CommitSig, len(items))
	for i, item := range items {
		is := item.BeginParse()
		sig := types.CommitSig{BlockIDFlag: types.BlockIDFlag(is.LoadUint8())}
		absent := sig.BlockIDFlag == types.BlockIDFlagAbsent
		if !absent {
			sig.ValidatorAddress = is.LoadBytes(crypto.AddressSize)
		}
		ts := is.LoadRef()
		if !absent {
			sig.Signature = is.LoadRest()
		}
		if err := is.End(); err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		tsSlice := ts.BeginParse()
		sig.Timestamp = tsSlice.LoadTime()
		if err := tsSlice.End(); err != nil {
			return nil, fmt.Errorf("signature %d time: %w", i, err)
		}
		if absent {
			sig.Timestamp = time.Time{}
		}
		commit.Signatures[i] = sig
	}
	return commit, nil
}

// EncodeVerifyBlockHash builds the message asking the light client contract
// to verify lb. The body refers to the header, the validator set and the
// commit.
func EncodeVerifyBlockHash(queryID uint64, lb *types.LightBlock) (*cell.Cell, error) {
	if lb == nil || lb.SignedHeader == nil {
		return nil, errors.New("nil light block")
	}
	header, err := EncodeHeader(lb.Header)
	if err != nil {
		return nil, err
	}
	vals, err := EncodeValidators(lb.ValidatorSet)
	if err != nil {
		return nil, err
	}
	commit, err := EncodeCommit(lb.Commit)
	if err != nil {
		return nil, err
	}
	body, err := cell.NewBuilder().StoreRef(header).StoreRef(vals).StoreRef(commit).Build()
	if err != nil {
		return nil, err
	}
	return Message{Op: OpVerifyBlockHash, QueryID: queryID, Body: body}.Cell()
}

// DecodeVerifyBlockHash reads a message built by EncodeVerifyBlockHash.
func DecodeVerifyBlockHash(c *cell.Cell) (uint64, *types.LightBlock, error) {
	queryID, body, err := parseBody(c, OpVerifyBlockHash)
	if err != nil {
		return 0, nil, err
	}
	s := body.BeginParse()
	hc, vc, cc := s.LoadRef(), s.LoadRef(), s.LoadRef()
	if err := s.End(); err != nil {
		return 0, nil, fmt.Errorf("verify block hash body: %w", err)
	}
	header, err := DecodeHeader(hc)
	if err != nil {
		return 0, nil, err
	}
	vals, err := DecodeValidators(vc)
	if err != nil {
		return 0, nil, err
	}
	commit, err := DecodeCommit(cc)
	if err != nil {
		return 0, nil, err
	}
	return queryID, &types.LightBlock{
		SignedHeader: &types.SignedHeader{Header: header, Commit: commit},
		ValidatorSet: vals,
	}, nil
}
