package packet_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraichain/tonbridge-core/packet"
)

const rawUser = "0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8"

func TestParseAddress(t *testing.T) {
	want, err := packet.ParseAddress(rawUser)
	require.NoError(t, err)
	assert.EqualValues(t, 0, want.Workchain)
	assert.Equal(t, rawUser, want.String())

	for _, s := range []string{
		"EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N", // bounceable
		"UQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqEBI", // non-bounceable
		"kQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqKYH", // testnet
	} {
		got, err := packet.ParseAddress(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	assert.Equal(t, "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N", want.Friendly(true, false))
	assert.Equal(t, "UQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqEBI", want.Friendly(false, false))
	assert.Equal(t, "kQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqKYH", want.Friendly(true, true))

	master, err := packet.ParseAddress("Ef-D39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqOLF")
	require.NoError(t, err)
	assert.EqualValues(t, -1, master.Workchain)
	assert.Equal(t, want.Account, master.Account)
	assert.Equal(t, "-1:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8", master.String())
}

func TestParseAddressErrors(t *testing.T) {
	for name, s := range map[string]string{
		"bad checksum":      "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2A",
		"bad tag":           "AQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N",
		"short":             "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8x",
		"short account":     "0:83dfd552",
		"workchain too big": "300:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8",
		"not hex":           "0:zz",
	} {
		_, err := packet.ParseAddress(s)
		assert.Error(t, err, name)
	}
}

func TestAddressJSON(t *testing.T) {
	addr := packet.MustParseAddress(rawUser)
	bz, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+rawUser+`"`, string(bz))

	var got packet.Address
	require.NoError(t, json.Unmarshal([]byte(`"EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"`), &got))
	assert.Equal(t, addr, got)
	assert.Len(t, got.Bytes(), 33)
	assert.False(t, got.IsZero())
	assert.True(t, packet.Address{}.IsZero())
}
