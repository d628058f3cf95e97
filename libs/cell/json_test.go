package cell_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/oraichain/tonbridge-core/libs/cell"
)

const swapMemo = `{
	"send_to_ton": {
		"asset": {
			"info": {"token": {"contract_address": "orai12315345123125125123"}},
			"amount": "1000000000"
		},
		"ton_info": {
			"to": "toTON",
			"denom": "denom",
			"amount": "amount",
			"src": "Oraichain",
			"jetton_code": "JettonCode",
			"from": "oraiFrom"
		},
		"fees": [1, 2.5, -3e2, null, true, false],
		"empty": {}
	}
}`

func TestJSONRoundTrip(t *testing.T) {
	v, err := cell.ParseJSON([]byte(swapMemo))
	require.NoError(t, err)
	require.Equal(t, cell.JSONObject, v.Kind)
	require.Len(t, v.Fields, 1)
	assert.Equal(t, "send_to_ton", v.Fields[0].Key)

	c, err := cell.EncodeJSON(v)
	require.NoError(t, err)

	got, err := cell.DecodeJSON(c)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// the field order and the number literals survive
	bz, err := json.Marshal(got)
	require.NoError(t, err)
	compact := strings.NewReplacer("\n", "", "\t", "", " ", "").Replace(swapMemo)
	assert.Equal(t, compact, string(bz))

	// encoding is deterministic
	again, err := cell.EncodeJSON(v)
	require.NoError(t, err)
	assert.Equal(t, c.Hash(), again.Hash())
}

func TestJSONLongString(t *testing.T) {
	long := strings.Repeat("orai", 100)
	v := cell.JSON{Kind: cell.JSONString, String: long}
	c, err := cell.EncodeJSON(v)
	require.NoError(t, err)
	assert.Greater(t, c.Depth(), 3)

	got, err := cell.DecodeJSON(c)
	require.NoError(t, err)
	assert.Equal(t, long, got.String)
}

func TestParseJSONErrors(t *testing.T) {
	for _, s := range []string{``, `{`, `[1,]`, `{"a" 1}`, `1 2`, `nul`} {
		_, err := cell.ParseJSON([]byte(s))
		assert.Error(t, err, s)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	mustBuild := func(b *cell.Builder) *cell.Cell {
		c, err := b.Build()
		require.NoError(t, err)
		return c
	}

	testCases := map[string]*cell.Cell{
		"empty":          cell.Empty(),
		"unknown kind":   mustBuild(cell.NewBuilder().StoreUint8(9)),
		"bad bool":       mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONBool)).StoreUint8(2)),
		"trailing data":  mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONNull)).StoreUint8(0)),
		"missing ref":    mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONString))),
		"bad number":     mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONNumber)).StoreRef(cell.Chunk([]byte("1x")))),
		"empty number":   mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONNumber)).StoreRef(cell.Empty())),
		"invalid utf8":   mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONString)).StoreRef(cell.Chunk([]byte{0xff}))),
		"bad array item": mustBuild(cell.NewBuilder().StoreUint8(uint8(cell.JSONArray)).StoreRef(mustList(t, cell.Empty()))),
	}
	for name, c := range testCases {
		_, err := cell.DecodeJSON(c)
		assert.Error(t, err, name)
	}

	_, err := cell.EncodeJSON(cell.JSON{Kind: cell.JSONNumber})
	assert.Error(t, err)
	_, err = cell.EncodeJSON(cell.JSON{Kind: 42})
	assert.Error(t, err)
}

func mustList(t *testing.T, items ...*cell.Cell) *cell.Cell {
	l, err := cell.List(items)
	require.NoError(t, err)
	return l
}

func jsonGen(depth int) *rapid.Generator {
	scalars := []*rapid.Generator{
		rapid.SampledFrom([]cell.JSON{{Kind: cell.JSONNull}}),
		rapid.Custom(func(t *rapid.T) cell.JSON {
			return cell.JSON{Kind: cell.JSONBool, Bool: rapid.Bool().Draw(t, "bool").(bool)}
		}),
		rapid.Custom(func(t *rapid.T) cell.JSON {
			n := rapid.Int64().Draw(t, "number").(int64)
			return cell.JSON{Kind: cell.JSONNumber, Number: json.Number(jsonInt(n))}
		}),
		rapid.Custom(func(t *rapid.T) cell.JSON {
			return cell.JSON{Kind: cell.JSONString, String: rapid.String().Draw(t, "string").(string)}
		}),
	}
	if depth == 0 {
		return rapid.OneOf(scalars...)
	}
	child := jsonGen(depth - 1)
	array := rapid.Custom(func(t *rapid.T) cell.JSON {
		items := rapid.SliceOfN(child, 1, 4).Draw(t, "items").([]cell.JSON)
		return cell.JSON{Kind: cell.JSONArray, Items: items}
	})
	object := rapid.Custom(func(t *rapid.T) cell.JSON {
		n := rapid.IntRange(1, 4).Draw(t, "fields").(int)
		v := cell.JSON{Kind: cell.JSONObject}
		for i := 0; i < n; i++ {
			v.Fields = append(v.Fields, cell.JSONField{
				Key:   rapid.String().Draw(t, "key").(string),
				Value: child.Draw(t, "value").(cell.JSON),
			})
		}
		return v
	})
	return rapid.OneOf(append(scalars, array, object)...)
}

func jsonInt(n int64) string {
	bz, _ := json.Marshal(n)
	return string(bz)
}

func TestJSONCellRoundTrip(t *testing.T) {
	gen := jsonGen(3)
	rapid.Check(t, func(t *rapid.T) {
		v := gen.Draw(t, "json").(cell.JSON)
		c, err := cell.EncodeJSON(v)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := cell.DecodeJSON(c)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		want, _ := json.Marshal(v)
		have, _ := json.Marshal(got)
		if string(want) != string(have) {
			t.Fatalf("round trip mismatch: %s != %s", want, have)
		}
	})
}
