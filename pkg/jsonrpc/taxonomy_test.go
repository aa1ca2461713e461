package jsonrpc_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
)

type mismatchReason struct {
	Reason string `json:"reason"`
	Slot   uint64 `json:"slot"`
}

var testTaxonomy = jsonrpc.NewTaxonomy("test",
	jsonrpc.Structured(2001, "EraMismatch",
		jsonrpc.FieldOf[string]("query_era"),
		jsonrpc.FieldOf[string]("ledger_era"),
	),
	jsonrpc.Unit(2002, "UnavailableInCurrentEra"),
	jsonrpc.Single[string](2003, "AcquiredExpired"),
	jsonrpc.Structured(3100, "InvalidSignatories",
		jsonrpc.FieldOf[[]string]("unknown_signatories"),
		jsonrpc.FieldOf[*string]("provided_hash"),
	),
	jsonrpc.Single[mismatchReason](3200, "Rejected"),
)

func TestTaxonomy_UnitIgnoresData(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]string{
		"absent":  `{"code":2002,"message":"Unavailable"}`,
		"null":    `{"code":2002,"message":"Unavailable","data":null}`,
		"present": `{"code":2002,"message":"Unavailable","data":{"anything":[1,2]}}`,
		"scalar":  `{"code":2002,"message":"Unavailable","data":"text"}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := testTaxonomy.Resolve([]byte(raw))
			require.NoError(t, err)
			assert.Equal(t, "UnavailableInCurrentEra", v.Name)
			assert.Equal(t, jsonrpc.KindUnit, v.Kind)
			assert.Equal(t, "Unavailable", v.Message())
			assert.Equal(t, 2002, v.Code())
			assert.Equal(t, "test", v.Domain)
			assert.True(t, v.Known())
		})
	}
}

func TestTaxonomy_UnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	v, err := testTaxonomy.Resolve([]byte(`{"code":9999,"message":"Oops","data":{"foo":1}}`))
	require.NoError(t, err)
	assert.Equal(t, jsonrpc.KindFallback, v.Kind)
	assert.Equal(t, jsonrpc.FallbackName, v.Name)
	assert.False(t, v.Known())
	assert.Equal(t, 9999, v.Code())
	assert.Equal(t, "Oops", v.Message())
	assert.JSONEq(t, `{"foo":1}`, string(v.Data))
	assert.Equal(t, "[9999] Oops", v.Error())

	v, err = testTaxonomy.Resolve([]byte(`{"code":-1,"message":"no data"}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(v.Data))

	v, err = (*jsonrpc.Taxonomy)(nil).Resolve([]byte(`{"code":2002,"message":"Unavailable"}`))
	require.NoError(t, err)
	assert.Equal(t, jsonrpc.KindFallback, v.Kind)
}

func TestTaxonomy_Structured(t *testing.T) {
	t.Parallel()

	v, err := testTaxonomy.Resolve([]byte(`{"code":2001,"message":"Era mismatch","data":{"queryEra":"babbage","ledgerEra":"conway","extra":true}}`))
	require.NoError(t, err)
	assert.Equal(t, "EraMismatch", v.Name)
	assert.Equal(t, jsonrpc.KindStructured, v.Kind)
	assert.Equal(t, []string{"ledger_era", "query_era"}, v.FieldNames())

	queryEra, ok := jsonrpc.FieldAs[string](v, "query_era")
	require.True(t, ok)
	assert.Equal(t, "babbage", queryEra)
	ledgerEra, ok := v.Field("ledger_era")
	require.True(t, ok)
	assert.Equal(t, "conway", ledgerEra)

	_, ok = jsonrpc.FieldAs[int](v, "query_era")
	assert.False(t, ok, "wrong type")
	_, ok = v.Field("extra")
	assert.False(t, ok, "undeclared fields are not kept")
}

func TestTaxonomy_StructuredNullableField(t *testing.T) {
	t.Parallel()

	v, err := testTaxonomy.Resolve([]byte(`{"code":3100,"message":"x","data":{"unknownSignatories":["a","b"],"providedHash":null}}`))
	require.NoError(t, err)

	signatories, ok := jsonrpc.FieldAs[[]string](v, "unknown_signatories")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, signatories)
	hash, ok := jsonrpc.FieldAs[*string](v, "provided_hash")
	require.True(t, ok)
	assert.Nil(t, hash)
}

func TestTaxonomy_StructuredOptionalField(t *testing.T) {
	t.Parallel()

	tax := jsonrpc.NewTaxonomy("optional",
		jsonrpc.Structured(3124, "NetworkMismatch",
			jsonrpc.FieldOf[string]("expected_network"),
			jsonrpc.OptionalFieldOf[[]string]("invalid_entities"),
		),
	)

	for name, data := range map[string]string{
		"absent": `{"expectedNetwork":"mainnet"}`,
		"null":   `{"expectedNetwork":"mainnet","invalidEntities":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := tax.Resolve([]byte(`{"code":3124,"message":"x","data":` + data + `}`))
			require.NoError(t, err)
			assert.Equal(t, []string{"expected_network"}, v.FieldNames())
			_, ok := v.Field("invalid_entities")
			assert.False(t, ok)
		})
	}

	v, err := tax.Resolve([]byte(`{"code":3124,"message":"x","data":{"expectedNetwork":"mainnet","invalidEntities":["addr1"]}}`))
	require.NoError(t, err)
	entities, ok := jsonrpc.FieldAs[[]string](v, "invalid_entities")
	require.True(t, ok)
	assert.Equal(t, []string{"addr1"}, entities)

	_, err = tax.Resolve([]byte(`{"code":3124,"message":"x","data":{"expectedNetwork":"mainnet","invalidEntities":"addr1"}}`))
	var fieldErr *jsonrpc.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, jsonrpc.TypeMismatch, fieldErr.Kind)
	assert.Equal(t, "invalid_entities", fieldErr.Field)

	_, err = tax.Resolve([]byte(`{"code":3124,"message":"x","data":{"invalidEntities":[]}}`))
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, jsonrpc.MissingField, fieldErr.Kind)
	assert.Equal(t, "expected_network", fieldErr.Field)
}

func TestTaxonomy_StructuredFailures(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name      string
		raw       string
		wantField string
		wantKind  jsonrpc.FieldErrorKind
	}{
		{name: "data absent", raw: `{"code":2001,"message":"x"}`, wantField: "data", wantKind: jsonrpc.MissingField},
		{name: "data null", raw: `{"code":2001,"message":"x","data":null}`, wantField: "data", wantKind: jsonrpc.MissingField},
		{name: "data not an object", raw: `{"code":2001,"message":"x","data":["babbage"]}`, wantField: "data", wantKind: jsonrpc.TypeMismatch},
		{name: "field missing", raw: `{"code":2001,"message":"x","data":{"queryEra":"babbage"}}`, wantField: "ledger_era", wantKind: jsonrpc.MissingField},
		{name: "snake case on the wire", raw: `{"code":2001,"message":"x","data":{"query_era":"a","ledger_era":"b"}}`, wantField: "query_era", wantKind: jsonrpc.MissingField},
		{name: "wrong shape", raw: `{"code":2001,"message":"x","data":{"queryEra":7,"ledgerEra":"conway"}}`, wantField: "query_era", wantKind: jsonrpc.TypeMismatch},
		{name: "null for a string", raw: `{"code":2001,"message":"x","data":{"queryEra":"a","ledgerEra":null}}`, wantField: "ledger_era", wantKind: jsonrpc.TypeMismatch},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := testTaxonomy.Resolve([]byte(tc.raw))
			require.Error(t, err)
			require.ErrorIs(t, err, jsonrpc.ErrDecode)

			var fieldErr *jsonrpc.FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, "EraMismatch", fieldErr.Variant)
			assert.Equal(t, tc.wantField, fieldErr.Field)
			assert.Equal(t, tc.wantKind, fieldErr.Kind)
		})
	}
}

func TestTaxonomy_Single(t *testing.T) {
	t.Parallel()

	v, err := testTaxonomy.Resolve([]byte(`{"code":2003,"message":"Expired","data":"point is too old"}`))
	require.NoError(t, err)
	assert.Equal(t, jsonrpc.KindSingle, v.Kind)
	payload, ok := jsonrpc.PayloadAs[string](v)
	require.True(t, ok)
	assert.Equal(t, "point is too old", payload)

	v, err = testTaxonomy.Resolve([]byte(`{"code":3200,"message":"Rejected","data":{"reason":"late","slot":7}}`))
	require.NoError(t, err)
	reason, ok := jsonrpc.PayloadAs[mismatchReason](v)
	require.True(t, ok)
	assert.Equal(t, mismatchReason{Reason: "late", Slot: 7}, reason)

	var fieldErr *jsonrpc.FieldError
	_, err = testTaxonomy.Resolve([]byte(`{"code":2003,"message":"Expired"}`))
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, jsonrpc.MissingField, fieldErr.Kind)

	_, err = testTaxonomy.Resolve([]byte(`{"code":2003,"message":"Expired","data":{"not":"a string"}}`))
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, jsonrpc.TypeMismatch, fieldErr.Kind)
	assert.Equal(t, "data", fieldErr.Field)
}

func TestTaxonomy_MalformedErrorObject(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]string{
		"missing code":    `{"message":"x"}`,
		"missing message": `{"code":1}`,
		"string code":     `{"code":"1","message":"x"}`,
		"fractional code": `{"code":1.5,"message":"x"}`,
		"not an object":   `"boom"`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := testTaxonomy.Resolve([]byte(raw))
			require.ErrorIs(t, err, jsonrpc.ErrDecode)
		})
	}
}

func TestTaxonomy_EveryDeclaredCodeResolves(t *testing.T) {
	t.Parallel()

	validData := map[int]any{
		2001: map[string]any{"queryEra": "a", "ledgerEra": "b"},
		2003: "payload",
		3100: map[string]any{"unknownSignatories": []string{}, "providedHash": "ff"},
		3200: map[string]any{"reason": "r", "slot": 1},
	}

	for _, code := range testTaxonomy.Codes() {
		declared, ok := testTaxonomy.Lookup(code)
		require.True(t, ok)

		obj := map[string]any{"code": code, "message": declared.Name}
		if data, ok := validData[code]; ok {
			obj["data"] = data
		}
		raw, err := json.Marshal(obj)
		require.NoError(t, err)

		v, err := testTaxonomy.Resolve(raw)
		require.NoError(t, err, "code %d", code)
		assert.Equal(t, declared.Name, v.Name)
		assert.Equal(t, declared.Kind, v.Kind)
		assert.Len(t, v.FieldNames(), len(declared.Fields()))
	}
}

func TestNewTaxonomy_DuplicateCodePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		jsonrpc.NewTaxonomy("dup", jsonrpc.Unit(1, "A"), jsonrpc.Unit(1, "B"))
	})
	assert.Panics(t, func() {
		jsonrpc.NewTaxonomy("shapeless", jsonrpc.Variant{Code: 1, Name: "A"})
	})
}

func TestWireName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"query_era":                 "queryEra",
		"from":                      "from",
		"missing_required_datums":   "missingRequiredDatums",
		"provided_script_integrity": "providedScriptIntegrity",
		"a_b_c":                     "aBC",
	} {
		assert.Equal(t, want, jsonrpc.WireName(in))
	}
}
