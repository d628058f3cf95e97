package commands

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraichain/tonbridge-core/bridge"
	"github.com/oraichain/tonbridge-core/config"
	"github.com/oraichain/tonbridge-core/crypto/ics23"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/packet"
	"github.com/oraichain/tonbridge-core/types"
)

const (
	bridgeContract = "orai1gzuxckyhl3qs2r4ccgy8nfh9p8200y6ug2kphp888lvlp7wkk23s6crhz7"
	provenHeight   = int64(28349621)
)

var (
	bTime = time.Date(2024, 7, 26, 8, 0, 0, 0, time.UTC)
	now   = bTime.Add(time.Hour)
)

// runCmd executes a fresh root command with args and returns what it wrote
// to stdout.
func runCmd(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := RootCommand(viper.New(), home)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func initHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	_, err := runCmd(t, home, "init", "--contract", bridgeContract, "--log_level", "error")
	require.NoError(t, err)
	return home
}

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	bz, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bz, 0600))
	return path
}

func TestInit(t *testing.T) {
	home := t.TempDir()
	out, err := runCmd(t, home, "init", "--contract", bridgeContract, "--chain-id", "Oraichain-testnet")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, "config.toml"))

	v := viper.New()
	v.SetConfigFile(filepath.Join(home, "config.toml"))
	require.NoError(t, v.ReadInConfig())
	v.Set("home", home)
	conf, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Oraichain-testnet", conf.LightClient.ChainID)
	assert.Equal(t, bridgeContract, conf.Bridge.Contract)

	_, err = runCmd(t, home, "init", "--contract", bridgeContract)
	assert.Error(t, err, "config exists")
	_, err = runCmd(t, home, "init", "--contract", bridgeContract, "--force")
	assert.NoError(t, err)
}

func TestInitErrors(t *testing.T) {
	testCases := map[string][]string{
		"no contract":      {"init"},
		"bad contract":     {"init", "--contract", "orai1invalid"},
		"bad log format":   {"init", "--contract", bridgeContract, "--log_format", "xml"},
		"unexpected input": {"init", "extra", "--contract", bridgeContract},
	}
	for name, args := range testCases {
		args := args
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			_, err := runCmd(t, home, args...)
			assert.Error(t, err)
			_, statErr := os.Stat(filepath.Join(home, "config.toml"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRootHome(t *testing.T) {
	defaultRoot := t.TempDir()
	newRoot := filepath.Join(t.TempDir(), "something-else")
	cases := []struct {
		args []string
		env  map[string]string
		root string
	}{
		{nil, nil, defaultRoot},
		{[]string{"--home", newRoot}, nil, newRoot},
		{nil, map[string]string{"TB_HOME": newRoot}, newRoot},
		{nil, map[string]string{"TBHOME": newRoot}, newRoot},
	}

	for i, tc := range cases {
		tc := tc
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.NoError(t, os.RemoveAll(tc.root))
			// TBHOME is copied to TB_HOME, which has to be restored as well
			t.Setenv("TB_HOME", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			args := append([]string{"init", "--contract", bridgeContract}, tc.args...)
			_, err := runCmd(t, defaultRoot, args...)
			require.NoError(t, err)
			_, err = os.Stat(filepath.Join(tc.root, "config.toml"))
			assert.NoError(t, err)
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	_, err := runCmd(t, filepath.Join(t.TempDir(), "missing"), "verify-update", "lb.json")
	assert.Error(t, err, "no config")

	home := initHome(t)
	t.Setenv("TB_LOG_FORMAT", "xml")
	_, err = runCmd(t, home, "verify-update", "lb.json")
	assert.Error(t, err, "invalid log format from the environment")
}

func makeLightBlock(t *testing.T, height int64, ts time.Time, appHash []byte) *types.LightBlock {
	t.Helper()
	vals, privs := types.DeterministicValidatorSet("cli", 10, 20, 30, 40)
	lb, err := types.MakeLightBlock("Oraichain", height, ts, vals, vals, privs, []int{0, 1, 2, 3}, appHash)
	require.NoError(t, err)
	return lb
}

func TestVerifyUpdate(t *testing.T) {
	home := initHome(t)
	dir := t.TempDir()
	first := makeLightBlock(t, 10, bTime, []byte("app"))
	second := makeLightBlock(t, 11, bTime.Add(5*time.Second), []byte("app2"))
	firstPath := writeJSON(t, dir, "first.json", first)
	secondPath := writeJSON(t, dir, "second.json", second)
	at := "--now=" + now.Format(time.RFC3339)

	_, err := runCmd(t, home, "verify-update", firstPath, at)
	assert.ErrorIs(t, err, light.ErrNotInitialized)

	_, err = runCmd(t, home, "verify-update", firstPath, at, "--trust-height", "10", "--trust-hash", "zz")
	assert.Error(t, err, "bad trust hash")

	out, err := runCmd(t, home, "verify-update", firstPath, at,
		"--trust-height", "10", "--trust-hash", first.Hash().String())
	require.NoError(t, err)
	assert.Contains(t, out, "trusted height 10")

	// state survives between runs
	out, err = runCmd(t, home, "verify-update", secondPath, at)
	require.NoError(t, err)
	assert.Contains(t, out, "Verified height 11")
	assert.Contains(t, out, "trusted height 11")

	// a stored height is not verified again
	_, err = runCmd(t, home, "verify-update", secondPath, at)
	require.NoError(t, err)

	third := makeLightBlock(t, 12, bTime.Add(10*time.Second), []byte("app3"))
	late := "--now=" + bTime.Add(30*24*time.Hour).Format(time.RFC3339)
	_, err = runCmd(t, home, "verify-update", writeJSON(t, dir, "third.json", third), late)
	var expired light.ErrOldHeaderExpired
	assert.ErrorAs(t, err, &expired)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func sibling(seed string) []byte {
	h := sha256.Sum256([]byte(seed))
	return h[:]
}

// proveSendToTon returns the proof of a send to TON packet and the app hash
// it leads to.
func proveSendToTon(t *testing.T, seq uint64) (bridge.PacketProof, []byte) {
	t.Helper()
	p := &packet.SendToTon{
		Seq:              seq,
		TokenOrigin:      1,
		RemoteAmount:     *uint256.NewInt(10_000_000),
		TimeoutTimestamp: uint64(now.Add(time.Hour).Unix()),
		RemoteReceiver:   packet.MustParseAddress("EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"),
		RemoteDenom:      packet.MustParseAddress("0:000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"),
		LocalSender:      []byte("orai12p0ywjwcpa500r9fuf0hly78zyjeltakrzkv0c"),
	}
	key, err := packet.CommitmentKey(bridgeContract, seq)
	require.NoError(t, err)
	commitment, err := packet.Commitment(p)
	require.NoError(t, err)

	inner := &ics23.ExistenceProof{
		Key:   key,
		Value: commitment,
		Leaf: &ics23.LeafOp{
			Hash:         ics23.HashOpSHA256,
			PrehashKey:   ics23.HashOpNoHash,
			PrehashValue: ics23.HashOpSHA256,
			Length:       ics23.LengthOpVarProto,
			Prefix:       []byte{0x00, 0x02, 0x02},
		},
		Path: []*ics23.InnerOp{{
			Hash:   ics23.HashOpSHA256,
			Prefix: []byte{0x02, 0x04, 0x02, 0x20},
			Suffix: concat([]byte{0x20}, sibling("right")),
		}},
	}
	storeRoot, err := inner.Calculate()
	require.NoError(t, err)
	outer := &ics23.ExistenceProof{
		Key:   []byte(packet.StoreKey),
		Value: storeRoot,
		Leaf: &ics23.LeafOp{
			Hash:         ics23.HashOpSHA256,
			PrehashKey:   ics23.HashOpNoHash,
			PrehashValue: ics23.HashOpSHA256,
			Length:       ics23.LengthOpVarProto,
			Prefix:       []byte{0x00},
		},
		Path: []*ics23.InnerOp{{Hash: ics23.HashOpSHA256, Prefix: []byte{0x01}, Suffix: sibling("bank")}},
	}
	appHash, err := outer.Calculate()
	require.NoError(t, err)

	return bridge.PacketProof{
		Height: provenHeight,
		Packet: p,
		Proofs: []*ics23.CommitmentProof{ics23.NewExistProof(inner), ics23.NewExistProof(outer)},
	}, appHash
}

func TestVerifyPacket(t *testing.T) {
	home := initHome(t)
	dir := t.TempDir()
	proof, appHash := proveSendToTon(t, 7)
	proofPath := writeJSON(t, dir, "proof.json", proof)
	at := "--now=" + now.Format(time.RFC3339)

	_, err := runCmd(t, home, "verify-packet", proofPath, at)
	assert.Error(t, err, "nothing trusted yet")

	lb := makeLightBlock(t, provenHeight, bTime, appHash)
	lbPath := writeJSON(t, dir, "lb.json", lb)
	_, err = runCmd(t, home, "verify-update", lbPath, at,
		"--trust-height", "28349621", "--trust-hash", lb.Hash().String())
	require.NoError(t, err)

	out, err := runCmd(t, home, "verify-packet", proofPath, at, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Verified send_to_ton packet 7 at height 28349621")

	_, err = runCmd(t, home, "verify-packet", proofPath, at)
	require.NoError(t, err)
	_, err = runCmd(t, home, "verify-packet", proofPath, at)
	var replayed packet.ErrPacketReplayed
	assert.ErrorAs(t, err, &replayed)

	timedOut := "--now=" + now.Add(2*time.Hour).Format(time.RFC3339)
	_, err = runCmd(t, home, "verify-packet", proofPath, timedOut, "--dry-run")
	var expired bridge.ErrPacketTimedOut
	assert.ErrorAs(t, err, &expired)
}

func TestRelayCommands(t *testing.T) {
	dir := t.TempDir()
	lbPath := writeJSON(t, dir, "lb.json", makeLightBlock(t, provenHeight, bTime, sibling("app")))
	out, err := runCmd(t, dir, "relay", "block", lbPath, "--query-id", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "op: verify_block_hash\nquery_id: 42\n")

	proof, _ := proveSendToTon(t, 1)
	proofPath := writeJSON(t, dir, "proof.json", proof)
	out, err = runCmd(t, dir, "relay", "packet", proofPath, "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, "op: receive_packet\n")
	assert.Contains(t, out, "depth: ")
}

func TestPacketCommands(t *testing.T) {
	bz := "0xae89be5b" + "0000000000000001" + "00000001" + "00000000000000000000000000989680" +
		"0000000066851e00" +
		"0083dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8" +
		"ff000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f" +
		"14505e4749d80f68f78ca9e25f7f93c711259fafb6"
	out, err := runCmd(t, t.TempDir(), "packet", "decode", bz)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "send_to_ton"`)
	assert.Contains(t, out, `"commitment": "864DCC562019B1FDAF0983829DF3ACCD05D723BBDCD83BAEBB3B5B2AD174CF6F"`)

	_, err = runCmd(t, t.TempDir(), "packet", "decode", "ae89")
	assert.Error(t, err)

	key, err := packet.CommitmentKey(bridgeContract, 3)
	require.NoError(t, err)
	out, err = runCmd(t, t.TempDir(), "packet", "key", bridgeContract, "3")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(key), lower(out))

	ack, err := packet.AckCommitmentKey(bridgeContract, 3)
	require.NoError(t, err)
	out, err = runCmd(t, t.TempDir(), "packet", "key", bridgeContract, "3", "--ack")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(ack), lower(out))
}

func lower(s string) string {
	return string(bytes.ToLower(bytes.TrimSpace([]byte(s))))
}

func TestTxHash(t *testing.T) {
	bz, err := os.ReadFile(filepath.Join("..", "..", "..", "tx", "testdata", "txs.json"))
	require.NoError(t, err)
	var f struct {
		TxRaw     string `json:"tx_raw"`
		TxRawHash string `json:"tx_raw_hash"`
	}
	require.NoError(t, json.Unmarshal(bz, &f))

	out, err := runCmd(t, t.TempDir(), "tx", "hash", f.TxRaw)
	require.NoError(t, err)
	var s txSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, f.TxRawHash, s.Hash.String())
	assert.NotEmpty(t, s.Messages)
	assert.Equal(t, 1, s.Signatures)

	_, err = runCmd(t, t.TempDir(), "tx", "hash", "not base64!")
	assert.Error(t, err)
}

func TestCellJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":[1,true,null,"x"]}`), 0600))

	out, err := runCmd(t, dir, "cell", "json", path)
	require.NoError(t, err)
	again, err := runCmd(t, dir, "cell", "json", path)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Contains(t, out, "hash: ")

	require.NoError(t, os.WriteFile(path, []byte(`{"a":`), 0600))
	_, err = runCmd(t, dir, "cell", "json", path)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
