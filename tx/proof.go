package tx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/crypto/merkle"
	tmbytes "github.com/oraichain/tonbridge-core/libs/bytes"
)

// Tx is a raw transaction as it appears in block data.
type Tx []byte

// Hash computes the SHA-256 of the raw transaction.
func (tx Tx) Hash() []byte { return crypto.Checksum(tx) }

// String returns the hex-encoded transaction as a string.
func (tx Tx) String() string { return fmt.Sprintf("Tx{%X}", []byte(tx)) }

// Txs is the ordered transaction list of a block.
type Txs []Tx

// Hash returns the Merkle root hash of the transaction hashes, which is the
// DataHash of the header.
// i.e. the leaves of the tree are the hashes of the txs.
func (txs Txs) Hash() []byte {
	return merkle.HashFromByteSlices(txs.hashList())
}

// Index returns the index of this transaction in the list, or -1 if not found
func (txs Txs) Index(tx Tx) int {
	for i := range txs {
		if bytes.Equal(txs[i], tx) {
			return i
		}
	}
	return -1
}

// IndexByHash returns the index of this transaction hash in the list, or -1 if not found
func (txs Txs) IndexByHash(hash []byte) int {
	for i := range txs {
		if bytes.Equal(txs[i].Hash(), hash) {
			return i
		}
	}
	return -1
}

// Proof builds the inclusion proof of the i-th transaction.
func (txs Txs) Proof(i int) (TxProof, error) {
	tree := merkle.BuildTree(txs.hashList())
	proof, err := tree.Prove(i)
	if err != nil {
		return TxProof{}, err
	}
	return TxProof{
		RootHash: tree.RootHash(),
		Data:     txs[i],
		Proof:    *proof,
	}, nil
}

func (txs Txs) hashList() [][]byte {
	hl := make([][]byte, len(txs))
	for i := 0; i < len(txs); i++ {
		hl[i] = txs[i].Hash()
	}
	return hl
}

// TxProof represents a Merkle proof of the presence of a transaction in the Merkle tree.
type TxProof struct {
	RootHash tmbytes.HexBytes   `json:"root_hash"`
	Data     Tx                 `json:"data"`
	Proof    merkle.BranchProof `json:"proof"`
}

// Leaf returns the hash(tx), which is the leaf in the merkle tree which this proof refers to.
func (tp TxProof) Leaf() []byte {
	return tp.Data.Hash()
}

// Validate verifies the proof. It returns nil if the RootHash matches the dataHash argument,
// and if the proof is internally consistent. Otherwise, it returns a sensible error.
func (tp TxProof) Validate(dataHash []byte) error {
	if len(tp.Data) == 0 {
		return ErrEmptyTx
	}
	if !bytes.Equal(dataHash, tp.RootHash) {
		return errors.New("proof matches different data hash")
	}
	if tp.Proof.Index < 0 {
		return errors.New("proof index cannot be negative")
	}
	if tp.Proof.Total <= 0 {
		return errors.New("proof total must be positive")
	}
	if tp.Proof.Index >= tp.Proof.Total {
		return fmt.Errorf("proof index %d out of range [0, %d)", tp.Proof.Index, tp.Proof.Total)
	}
	return VerifyInclusion(dataHash, tp.Data, &tp.Proof)
}

// VerifyInclusion checks that tx is committed under dataHash through proof.
// A malformed proof is reported as is; a well formed one that leads
// elsewhere yields ErrTxNotIncluded.
func VerifyInclusion(dataHash []byte, tx Tx, proof *merkle.BranchProof) error {
	if len(tx) == 0 {
		return ErrEmptyTx
	}
	ok, err := merkle.VerifyMembership(tx.Hash(), proof, dataHash)
	if err != nil {
		return fmt.Errorf("malformed inclusion proof: %w", err)
	}
	if !ok {
		return ErrTxNotIncluded
	}
	return nil
}
