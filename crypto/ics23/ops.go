package ics23

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/ripemd160" // nolint: staticcheck
	"golang.org/x/crypto/sha3"

	"github.com/oraichain/tonbridge-core/libs/protoio"
)

// HashOp is the hash function applied by a leaf or inner node.
type HashOp int32

const (
	HashOpNoHash     HashOp = 0
	HashOpSHA256     HashOp = 1
	HashOpSHA512     HashOp = 2
	HashOpKeccak     HashOp = 3
	HashOpRIPEMD160  HashOp = 4
	HashOpBitcoin    HashOp = 5
	HashOpSHA512_256 HashOp = 6
)

var hashOpNames = map[HashOp]string{
	HashOpNoHash:     "NO_HASH",
	HashOpSHA256:     "SHA256",
	HashOpSHA512:     "SHA512",
	HashOpKeccak:     "KECCAK",
	HashOpRIPEMD160:  "RIPEMD160",
	HashOpBitcoin:    "BITCOIN",
	HashOpSHA512_256: "SHA512_256",
}

func (op HashOp) String() string {
	if s, ok := hashOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("HashOp(%d)", int32(op))
}

// LengthOp is the length prefix applied to the key and value of a leaf.
type LengthOp int32

const (
	LengthOpNoPrefix       LengthOp = 0
	LengthOpVarProto       LengthOp = 1
	LengthOpVarRLP         LengthOp = 2
	LengthOpFixed32Big     LengthOp = 3
	LengthOpFixed32Little  LengthOp = 4
	LengthOpFixed64Big     LengthOp = 5
	LengthOpFixed64Little  LengthOp = 6
	LengthOpRequire32Bytes LengthOp = 7
	LengthOpRequire64Bytes LengthOp = 8
)

var lengthOpNames = map[LengthOp]string{
	LengthOpNoPrefix:       "NO_PREFIX",
	LengthOpVarProto:       "VAR_PROTO",
	LengthOpVarRLP:         "VAR_RLP",
	LengthOpFixed32Big:     "FIXED32_BIG",
	LengthOpFixed32Little:  "FIXED32_LITTLE",
	LengthOpFixed64Big:     "FIXED64_BIG",
	LengthOpFixed64Little:  "FIXED64_LITTLE",
	LengthOpRequire32Bytes: "REQUIRE_32_BYTES",
	LengthOpRequire64Bytes: "REQUIRE_64_BYTES",
}

func (op LengthOp) String() string {
	if s, ok := lengthOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("LengthOp(%d)", int32(op))
}

// LeafOp describes how a key/value pair is hashed into a leaf.
type LeafOp struct {
	Hash         HashOp   `json:"hash"`
	PrehashKey   HashOp   `json:"prehashKey"`
	PrehashValue HashOp   `json:"prehashValue"`
	Length       LengthOp `json:"length"`
	Prefix       []byte   `json:"prefix"`
}

// InnerOp describes one step from a child up to its parent:
// parent = Hash(Prefix || child || Suffix).
type InnerOp struct {
	Hash   HashOp `json:"hash"`
	Prefix []byte `json:"prefix"`
	Suffix []byte `json:"suffix"`
}

// Apply hashes key and value into the leaf hash.
func (op *LeafOp) Apply(key, value []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("leaf op needs key")
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("leaf op needs value")
	}
	pkey, err := prepareLeafData(op.PrehashKey, op.Length, key)
	if err != nil {
		return nil, fmt.Errorf("prepare leaf key: %w", err)
	}
	pvalue, err := prepareLeafData(op.PrehashValue, op.Length, value)
	if err != nil {
		return nil, fmt.Errorf("prepare leaf value: %w", err)
	}
	data := make([]byte, 0, len(op.Prefix)+len(pkey)+len(pvalue))
	data = append(data, op.Prefix...)
	data = append(data, pkey...)
	data = append(data, pvalue...)
	return doHash(op.Hash, data)
}

// Apply hashes child into its parent.
func (op *InnerOp) Apply(child []byte) ([]byte, error) {
	if len(child) == 0 {
		return nil, fmt.Errorf("inner op needs child value")
	}
	data := make([]byte, 0, len(op.Prefix)+len(child)+len(op.Suffix))
	data = append(data, op.Prefix...)
	data = append(data, child...)
	data = append(data, op.Suffix...)
	return doHash(op.Hash, data)
}

func prepareLeafData(hashOp HashOp, lengthOp LengthOp, data []byte) ([]byte, error) {
	hdata, err := doHashOrNoop(hashOp, data)
	if err != nil {
		return nil, err
	}
	return doLengthOp(lengthOp, hdata)
}

func doHashOrNoop(op HashOp, preimage []byte) ([]byte, error) {
	if op == HashOpNoHash {
		return preimage, nil
	}
	return doHash(op, preimage)
}

func doHash(op HashOp, preimage []byte) ([]byte, error) {
	switch op {
	case HashOpSHA256:
		h := sha256.Sum256(preimage)
		return h[:], nil
	case HashOpSHA512:
		h := sha512.Sum512(preimage)
		return h[:], nil
	case HashOpSHA512_256:
		h := sha512.Sum512_256(preimage)
		return h[:], nil
	case HashOpKeccak:
		h := sha3.NewLegacyKeccak256()
		h.Write(preimage)
		return h.Sum(nil), nil
	case HashOpRIPEMD160:
		h := ripemd160.New()
		h.Write(preimage)
		return h.Sum(nil), nil
	case HashOpBitcoin:
		s := sha256.Sum256(preimage)
		h := ripemd160.New()
		h.Write(s[:])
		return h.Sum(nil), nil
	}
	return nil, fmt.Errorf("unsupported hashop: %v", op)
}

func doLengthOp(op LengthOp, data []byte) ([]byte, error) {
	switch op {
	case LengthOpNoPrefix:
		return data, nil
	case LengthOpVarProto:
		return append(protoio.EncodeVarint(uint64(len(data))), data...), nil
	case LengthOpRequire32Bytes:
		if len(data) != 32 {
			return nil, fmt.Errorf("data was %d bytes, not 32", len(data))
		}
		return data, nil
	case LengthOpRequire64Bytes:
		if len(data) != 64 {
			return nil, fmt.Errorf("data was %d bytes, not 64", len(data))
		}
		return data, nil
	case LengthOpFixed32Big:
		res := make([]byte, 4, 4+len(data))
		binary.BigEndian.PutUint32(res, uint32(len(data)))
		return append(res, data...), nil
	case LengthOpFixed32Little:
		res := make([]byte, 4, 4+len(data))
		binary.LittleEndian.PutUint32(res, uint32(len(data)))
		return append(res, data...), nil
	case LengthOpFixed64Big:
		res := make([]byte, 8, 8+len(data))
		binary.BigEndian.PutUint64(res, uint64(len(data)))
		return append(res, data...), nil
	case LengthOpFixed64Little:
		res := make([]byte, 8, 8+len(data))
		binary.LittleEndian.PutUint64(res, uint64(len(data)))
		return append(res, data...), nil
	}
	return nil, fmt.Errorf("unsupported lengthop: %v", op)
}
