package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	fixtureChainID    = "Oraichain"
	fixtureHeaderHash = "1CCCF41BAB3DD153852B4C59A2194EB90A210E2FF585CC60ED07EBA71B4D5D27"
	fixtureValsHash   = "7049E17D5A9EBDC4C165466F7C432D013BAF899A6EA2AF38240589CF881C2996"
	fixtureTotalPower = 5511027
)

func loadJSON(t *testing.T, name string, v interface{}) {
	t.Helper()
	bz, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bz, v))
}

func fixtureHeader(t *testing.T) *Header {
	var h Header
	loadJSON(t, "header_20082942.json", &h)
	return &h
}

func fixtureValidators(t *testing.T) *ValidatorSet {
	var resp ValidatorsResponse
	loadJSON(t, "validators_20082942.json", &resp)
	vals, err := resp.ValidatorSet()
	require.NoError(t, err)
	return vals
}
