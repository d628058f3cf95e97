package ics23

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/json"
	"strings"
	"testing"

	protoics23 "github.com/cosmos/ics23/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyExistence(t *testing.T) {
	p := iavlProof([]byte("key"), []byte("value"))
	root, err := p.Calculate()
	require.NoError(t, err)

	ok, err := VerifyExistence(p, IavlSpec, root, []byte("key"), []byte("value"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyExistence(p, IavlSpec, root, []byte("key"), []byte("other"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyExistence(p, IavlSpec, sibling("x"), []byte("key"), []byte("value"))
	require.NoError(t, err)
	assert.False(t, ok)

	// The IAVL inner prefixes are longer than the simple tree allows.
	_, err = VerifyExistence(p, TendermintSpec, root, []byte("key"), []byte("value"))
	require.Error(t, err)

	assert.True(t, VerifyMembership(IavlSpec, root, NewExistProof(p), []byte("key"), []byte("value")))
	assert.False(t, VerifyMembership(IavlSpec, root, &CommitmentProof{Kind: ProofKindNonExist}, []byte("key"), []byte("value")))
}

func TestCheckAgainstSpec(t *testing.T) {
	testCases := map[string]func(p *ExistenceProof){
		"leaf hash":        func(p *ExistenceProof) { p.Leaf.Hash = HashOpSHA512 },
		"leaf prehash key": func(p *ExistenceProof) { p.Leaf.PrehashKey = HashOpSHA256 },
		"leaf length":      func(p *ExistenceProof) { p.Leaf.Length = LengthOpNoPrefix },
		"leaf prefix":      func(p *ExistenceProof) { p.Leaf.Prefix = []byte{0x01} },
		"missing leaf":     func(p *ExistenceProof) { p.Leaf = nil },
		"inner hash":       func(p *ExistenceProof) { p.Path[0].Hash = HashOpSHA512 },
		"inner looks like leaf": func(p *ExistenceProof) {
			p.Path[0].Prefix = []byte{0x00, 0x04, 0x02, 0x20}
		},
		"inner prefix short": func(p *ExistenceProof) { p.Path[0].Prefix = []byte{0x02, 0x20} },
		"inner prefix long":  func(p *ExistenceProof) { p.Path[1].Prefix = append(p.Path[1].Prefix, make([]byte, 40)...) },
		"inner suffix":       func(p *ExistenceProof) { p.Path[0].Suffix = p.Path[0].Suffix[1:] },
		"nil inner":          func(p *ExistenceProof) { p.Path[1] = nil },
		"iavl leaf trailing": func(p *ExistenceProof) { p.Leaf.Prefix = []byte{0x00, 0x02, 0x02, 0x01} },
		"iavl leaf version":  func(p *ExistenceProof) { p.Leaf.Prefix = []byte{0x00, 0x02} },
		"iavl leaf negative": func(p *ExistenceProof) { p.Leaf.Prefix = []byte{0x00, 0x02, 0x03} },
		"iavl inner height": func(p *ExistenceProof) {
			p.Path[1].Prefix = concat([]byte{0x02, 0x08, 0x02, 0x20}, sibling("iavl-left"), []byte{0x20})
		},
		"iavl inner size":   func(p *ExistenceProof) { p.Path[0].Prefix = []byte{0x02, 0x03, 0x02, 0x20} },
		"iavl inner rest":   func(p *ExistenceProof) { p.Path[0].Prefix = []byte{0x02, 0x04, 0x02, 0x20, 0x20} },
		"iavl inner varint": func(p *ExistenceProof) { p.Path[0].Prefix = []byte{0x02, 0x84, 0x82, 0x80, 0x80} },
	}
	for name, mutate := range testCases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			p := iavlProof([]byte("key"), []byte("value"))
			require.NoError(t, p.CheckAgainstSpec(IavlSpec))
			require.NoError(t, existenceProofToProto(p).CheckAgainstSpec(protoics23.IavlSpec))
			mutate(p)
			assert.Error(t, p.CheckAgainstSpec(IavlSpec))
			if strings.HasPrefix(name, "iavl ") {
				assert.Error(t, existenceProofToProto(p).CheckAgainstSpec(protoics23.IavlSpec))
			}
		})
	}

	// Node headers are only read for IAVL trees.
	simple := simpleProof([]byte("k"), []byte("v"))
	require.NoError(t, simple.CheckAgainstSpec(TendermintSpec))

	depth := *IavlSpec
	depth.MaxDepth = 1
	assert.Error(t, iavlProof([]byte("k"), []byte("v")).CheckAgainstSpec(&depth))
	depth.MaxDepth, depth.MinDepth = 0, 3
	assert.Error(t, iavlProof([]byte("k"), []byte("v")).CheckAgainstSpec(&depth))
}

func TestSpecs(t *testing.T) {
	require.NoError(t, IavlSpec.ValidateBasic())
	require.NoError(t, TendermintSpec.ValidateBasic())
	assert.True(t, IavlSpec.Equal(IavlSpec))
	assert.False(t, IavlSpec.Equal(TendermintSpec))
	assert.Error(t, (&ProofSpec{LeafSpec: IavlSpec.LeafSpec}).ValidateBasic())
}

func TestLeafOpApply(t *testing.T) {
	op := &LeafOp{Hash: HashOpSHA256, PrehashValue: HashOpSHA256, Length: LengthOpVarProto, Prefix: []byte{0}}
	got, err := op.Apply([]byte("food"), []byte("bar"))
	require.NoError(t, err)

	vh := sha256.Sum256([]byte("bar"))
	want := sha256.Sum256(concat([]byte{0, 4}, []byte("food"), []byte{32}, vh[:]))
	assert.Equal(t, want[:], got)

	_, err = op.Apply(nil, []byte("bar"))
	assert.Error(t, err)
	_, err = op.Apply([]byte("food"), nil)
	assert.Error(t, err)

	_, err = (&LeafOp{Hash: HashOp(42)}).Apply([]byte("a"), []byte("b"))
	assert.Error(t, err)
	_, err = (&LeafOp{Hash: HashOpSHA256, Length: LengthOpVarRLP}).Apply([]byte("a"), []byte("b"))
	assert.Error(t, err)
}

func TestHashAndLengthOps(t *testing.T) {
	s512 := sha512.Sum512([]byte("x"))
	got, err := doHash(HashOpSHA512, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, s512[:], got)

	for _, op := range []HashOp{HashOpKeccak, HashOpSHA512_256} {
		got, err := doHash(op, []byte("x"))
		require.NoError(t, err)
		assert.Len(t, got, 32)
	}
	for _, op := range []HashOp{HashOpRIPEMD160, HashOpBitcoin} {
		got, err := doHash(op, []byte("x"))
		require.NoError(t, err)
		assert.Len(t, got, 20)
	}

	data := []byte{1, 2, 3}
	lengthCases := map[LengthOp][]byte{
		LengthOpNoPrefix:      {1, 2, 3},
		LengthOpVarProto:      {3, 1, 2, 3},
		LengthOpFixed32Big:    {0, 0, 0, 3, 1, 2, 3},
		LengthOpFixed32Little: {3, 0, 0, 0, 1, 2, 3},
		LengthOpFixed64Big:    {0, 0, 0, 0, 0, 0, 0, 3, 1, 2, 3},
		LengthOpFixed64Little: {3, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3},
	}
	for op, want := range lengthCases {
		got, err := doLengthOp(op, data)
		require.NoError(t, err, op.String())
		assert.Equal(t, want, got, op.String())
	}
	_, err = doLengthOp(LengthOpRequire32Bytes, data)
	assert.Error(t, err)
	_, err = doLengthOp(LengthOpRequire64Bytes, make([]byte, 64))
	assert.NoError(t, err)
}

func TestParseExistenceProofs(t *testing.T) {
	// Shape printed by cosmjs ExistenceProof.toJSON; the second leaf uses
	// numeric enums.
	raw := `[
	  {"key":"a2V5","value":"dmFsdWU=",
	   "leaf":{"hash":"SHA256","prehashKey":"NO_HASH","prehashValue":"SHA256","length":"VAR_PROTO","prefix":"AAIC"},
	   "path":[{"hash":"SHA256","prefix":"AgQCIA==","suffix":""}]},
	  {"key":"d2FzbQ==","value":"AQ==",
	   "leaf":{"hash":1,"prehashKey":0,"prehashValue":1,"length":1,"prefix":"AA=="},
	   "path":[]}
	]`
	proofs, err := ParseExistenceProofs([]byte(raw))
	require.NoError(t, err)
	require.Len(t, proofs, 2)

	first := proofs[0].Exist
	assert.Equal(t, []byte("key"), first.Key)
	assert.Equal(t, []byte{0x00, 0x02, 0x02}, first.Leaf.Prefix)
	assert.Equal(t, LengthOpVarProto, first.Leaf.Length)
	assert.Equal(t, []byte{0x02, 0x04, 0x02, 0x20}, first.Path[0].Prefix)
	assert.False(t, first.Leaf.equal(proofs[1].Exist.Leaf))
	assert.Equal(t, HashOpSHA256, proofs[1].Exist.Leaf.PrehashValue)

	out, err := json.Marshal(first.Leaf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hash":"SHA256","prehashKey":"NO_HASH","prehashValue":"SHA256","length":"VAR_PROTO","prefix":"AAIC"}`, string(out))

	_, err = ParseExistenceProofs([]byte(`[{"leaf":{"hash":"MD5"}}]`))
	assert.Error(t, err)
}
