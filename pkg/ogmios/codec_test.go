package ogmios_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

func TestRatio_Unmarshal(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		input   string
		want    ogmios.Ratio
		wantErr bool
	}{
		{name: "integer", input: `42`, want: ogmios.NewRatio(42, 1)},
		{name: "fraction string", input: `"577/10000"`, want: ogmios.NewRatio(577, 10000)},
		{name: "integer string", input: `"7"`, want: ogmios.NewRatio(7, 1)},
		{name: "reduces", input: `"2/4"`, want: ogmios.NewRatio(1, 2)},
		{name: "zero denominator", input: `"1/0"`, wantErr: true},
		{name: "garbage", input: `"a/b"`, wantErr: true},
		{name: "float", input: `1.5`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got ogmios.Ratio
			err := json.Unmarshal([]byte(tc.input), &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestRatio_Marshal(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(ogmios.NewRatio(577, 10000))
	require.NoError(t, err)
	assert.JSONEq(t, `"577/10000"`, string(out))

	out, err = json.Marshal(ogmios.NewRatio(12, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `"12"`, string(out))
}

func TestBalance(t *testing.T) {
	t.Parallel()

	t.Run("ada and assets", func(t *testing.T) {
		var b ogmios.Balance
		require.NoError(t, json.Unmarshal([]byte(`{
			"ada": {"lovelace": 2500000},
			"b0d07d45fe9514f80213f4020e5a61241458be626841cde717cb38a7": {"4e7574636f696e": 12}
		}`), &b))

		assert.Equal(t, uint64(2500000), b.Lovelace)
		assert.Equal(t, ogmios.Assets{
			"b0d07d45fe9514f80213f4020e5a61241458be626841cde717cb38a7": {"4e7574636f696e": 12},
		}, b.Assets)
		assert.True(t, decimal.RequireFromString("2.5").Equal(b.Ada()))
	})

	t.Run("missing ada", func(t *testing.T) {
		var b ogmios.Balance
		assert.ErrorContains(t, json.Unmarshal([]byte(`{"policy": {"asset": 1}}`), &b), "missing field ada")
	})

	t.Run("missing lovelace", func(t *testing.T) {
		var b ogmios.Balance
		assert.ErrorContains(t, json.Unmarshal([]byte(`{"ada": {}}`), &b), "ada.lovelace")
	})

	t.Run("marshal puts ada back", func(t *testing.T) {
		out, err := json.Marshal(ogmios.Balance{Lovelace: 1, Assets: ogmios.Assets{"p": {"a": 2}}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ada":{"lovelace":1},"p":{"a":2}}`, string(out))
	})
}

func TestAdaBalanceDelta_Negative(t *testing.T) {
	t.Parallel()

	var d ogmios.AdaBalanceDelta
	require.NoError(t, json.Unmarshal([]byte(`{"ada":{"lovelace":-1500000}}`), &d))
	assert.Equal(t, int64(-1500000), d.Lovelace)
}

func TestAdaToLovelace(t *testing.T) {
	t.Parallel()

	got, err := ogmios.AdaToLovelace(decimal.RequireFromString("1.000001"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000001), got)

	_, err = ogmios.AdaToLovelace(decimal.RequireFromString("0.0000001"))
	assert.Error(t, err)

	_, err = ogmios.AdaToLovelace(decimal.RequireFromString("-1"))
	assert.Error(t, err)

	assert.Equal(t, "1.000001", ogmios.LovelaceToAda(1000001).String())
}

func TestTip(t *testing.T) {
	t.Parallel()

	var origin ogmios.Tip
	require.NoError(t, json.Unmarshal([]byte(`"origin"`), &origin))
	assert.Equal(t, ogmios.Origin, origin)

	var point ogmios.Tip
	require.NoError(t, json.Unmarshal([]byte(`{"slot": 123, "id": "abcd"}`), &point))
	assert.Equal(t, ogmios.Tip{Slot: 123, ID: "abcd"}, point)
	assert.Equal(t, "123.abcd", point.String())

	var bad ogmios.Tip
	assert.Error(t, json.Unmarshal([]byte(`"genesis"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"slot": 1}`), &bad))

	c, ok := point.Compare(ogmios.Tip{Slot: 200, ID: "ef"})
	assert.True(t, ok)
	assert.Equal(t, -1, c)
	_, ok = point.Compare(ogmios.Origin)
	assert.False(t, ok)

	out, err := json.Marshal(ogmios.Origin)
	require.NoError(t, err)
	assert.JSONEq(t, `"origin"`, string(out))
}

func TestScript_Native(t *testing.T) {
	t.Parallel()

	input := `{
		"language": "native",
		"json": {
			"clause": "some",
			"atLeast": 1,
			"from": [
				{"clause": "signature", "from": "3c07030e36bfff7cb9e6e1b4ba5bff3e2d8ee5a8b2b1b2c3a7cd2e1f"},
				{"clause": "all", "from": [{"clause": "before", "slot": 100}]}
			]
		}
	}`

	var s ogmios.Script
	require.NoError(t, json.Unmarshal([]byte(input), &s))
	assert.Equal(t, ogmios.LanguageNative, s.Language)
	require.NotNil(t, s.Native)
	assert.Equal(t, ogmios.ClauseSome, s.Native.Clause)
	assert.Equal(t, uint64(1), s.Native.AtLeast)
	require.Len(t, s.Native.Clauses, 2)
	assert.Equal(t, "3c07030e36bfff7cb9e6e1b4ba5bff3e2d8ee5a8b2b1b2c3a7cd2e1f", s.Native.Clauses[0].Signature)
	assert.Equal(t, uint64(100), s.Native.Clauses[1].Clauses[0].Slot)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestScript_Failures(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name  string
		input string
	}{
		{name: "plutus without cbor", input: `{"language":"plutus:v2"}`},
		{name: "native without json", input: `{"language":"native"}`},
		{name: "unknown language", input: `{"language":"plutus:v9","cbor":"00"}`},
		{name: "some without atLeast", input: `{"language":"native","json":{"clause":"some","from":[]}}`},
		{name: "after without slot", input: `{"language":"native","json":{"clause":"after"}}`},
		{name: "signature with list", input: `{"language":"native","json":{"clause":"signature","from":[]}}`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var s ogmios.Script
			assert.Error(t, json.Unmarshal([]byte(tc.input), &s))
		})
	}
}

func TestScriptPurpose(t *testing.T) {
	t.Parallel()

	var p ogmios.ScriptPurpose
	require.NoError(t, json.Unmarshal([]byte(`{"purpose":"mint","policy":"abcd"}`), &p))
	assert.Equal(t, ogmios.PurposeMint, p.Purpose)
	assert.Equal(t, "abcd", p.Policy)

	assert.ErrorContains(t, json.Unmarshal([]byte(`{"purpose":"spend"}`), &p), "outputReference")
	assert.Error(t, json.Unmarshal([]byte(`{"purpose":"burn"}`), &p))
}

func TestMempoolTransaction(t *testing.T) {
	t.Parallel()

	t.Run("full transaction", func(t *testing.T) {
		var res ogmios.NextTransactionResult
		require.NoError(t, json.Unmarshal([]byte(`{"transaction":{
			"id": "aa",
			"inputs": [{"transaction": {"id": "bb"}, "index": 0}],
			"outputs": [{"address": "addr1", "value": {"ada": {"lovelace": 10}}}],
			"fee": {"ada": {"lovelace": 170000}}
		}}`), &res))
		require.NotNil(t, res.Transaction)
		require.NotNil(t, res.Transaction.Tx)
		assert.Equal(t, "aa", res.Transaction.ID())
		assert.Equal(t, uint64(10), res.Transaction.Tx.Outputs[0].Value.Lovelace)
		assert.Equal(t, "bb#0", res.Transaction.Tx.Inputs[0].String())
	})

	t.Run("pointer", func(t *testing.T) {
		var res ogmios.NextTransactionResult
		require.NoError(t, json.Unmarshal([]byte(`{"transaction":{"id":"cc"}}`), &res))
		require.NotNil(t, res.Transaction)
		assert.Nil(t, res.Transaction.Tx)
		assert.Equal(t, "cc", res.Transaction.ID())
	})

	t.Run("exhausted", func(t *testing.T) {
		var res ogmios.NextTransactionResult
		require.NoError(t, json.Unmarshal([]byte(`{"transaction":null}`), &res))
		assert.Nil(t, res.Transaction)
	})
}

func TestRewardAccountSummaries(t *testing.T) {
	t.Parallel()

	var got ogmios.RewardAccountSummaries
	require.NoError(t, json.Unmarshal([]byte(`{
		"af71729c838c1f33529fbd5d72564468fb530febd289976b3733f448": {
			"delegate": {"id": "pool1prc9hna2mgamtspchrygc66s9n4tlkvh39e3t9zccef4kzc3ns2"},
			"rewards": {"ada": {"lovelace": 7737851}},
			"deposit": {"ada": {"lovelace": 2000000}}
		},
		"stake1u9x9": {
			"delegate": null,
			"rewards": {"ada": {"lovelace": 1}},
			"deposit": {"ada": {"lovelace": 2}}
		}
	}`), &got))

	summary := got["af71729c838c1f33529fbd5d72564468fb530febd289976b3733f448"]
	require.NotNil(t, summary.Delegate)
	assert.Equal(t, "pool1prc9hna2mgamtspchrygc66s9n4tlkvh39e3t9zccef4kzc3ns2", summary.Delegate.ID)
	assert.Nil(t, summary.Delegate.VRF)
	assert.Equal(t, uint64(7737851), summary.Rewards.Lovelace)
	assert.Equal(t, uint64(2000000), summary.Deposit.Lovelace)
	assert.Nil(t, got["stake1u9x9"].Delegate)
}
