package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/config"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func testServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// moralisPayload builds a /wallets/{addr}/approvals response body.
func moralisPayload(records []map[string]interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{"result": records})
	return b
}

func moralisRecord(symbol, contractType interface{}, label interface{}, value, formatted string) map[string]interface{} {
	return map[string]interface{}{
		"token": map[string]interface{}{
			"address":       "0xtoken",
			"symbol":        symbol,
			"contract_type": contractType,
		},
		"spender": map[string]interface{}{
			"address":       "0xspender",
			"address_label": label,
		},
		"value":           value,
		"value_formatted": formatted,
	}
}

// alchemyPayload builds an alchemy_getTokenAllowances response body.
func alchemyPayload(records []map[string]interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  map[string]interface{}{"tokenAllowances": records},
	})
	return b
}

// ---------------------------------------------------------------------------
// Moralis — constructor
// ---------------------------------------------------------------------------

func TestNewMoralisNilWhenNoKey(t *testing.T) {
	assert.Nil(t, NewMoralis("base", ""))
}

func TestNewMoralisNilWhenUnsupportedChain(t *testing.T) {
	assert.Nil(t, NewMoralis("polygon", "KEY"))
}

func TestNewMoralisSupportedChains(t *testing.T) {
	for _, name := range []string{"base", "optimism", "ethereum"} {
		p := NewMoralis(name, "KEY")
		require.NotNil(t, p, "expected non-nil Moralis for chain %q", name)
		assert.Equal(t, "moralis", p.Name())
	}
}

// ---------------------------------------------------------------------------
// Moralis — normalization
// ---------------------------------------------------------------------------

func TestMoralisNormalizesFullRecord(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KEY", r.Header.Get("X-API-Key"))
		assert.Contains(t, r.URL.RawQuery, "chain=0x2105")
		w.Write(moralisPayload([]map[string]interface{}{
			moralisRecord("USDC", "ERC20", "Uniswap V3 Router", "1000000", "1.00"),
		}))
	})

	m := NewMoralis("base", "KEY")
	m.baseURL = srv.URL

	items, err := m.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "mor-0", it.ID)
	assert.Equal(t, "USDC", it.TokenSymbol)
	assert.Equal(t, "Uniswap V3 Router", it.SpenderLabel)
	assert.Equal(t, "1.00", it.Amount)
	assert.Equal(t, approvals.RiskLow, it.Risk)
	assert.Equal(t, approvals.KindToken, it.Kind)
	assert.False(t, it.Unlimited)
}

func TestMoralisNullLabelIsHighRisk(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(moralisPayload([]map[string]interface{}{
			moralisRecord("DAI", "ERC20", nil, "500", "500"),
		}))
	})

	m := NewMoralis("base", "KEY")
	m.baseURL = srv.URL

	items, err := m.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, approvals.RiskHigh, items[0].Risk)
	assert.Equal(t, approvals.GenericSpender, items[0].SpenderLabel)
}

func TestMoralisUnlimitedIsHighRiskDespiteLabel(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(moralisPayload([]map[string]interface{}{
			moralisRecord("WETH", "ERC20", "Known Router", "unlimited", "Unlimited"),
		}))
	})

	m := NewMoralis("base", "KEY")
	m.baseURL = srv.URL

	items, err := m.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, approvals.RiskHigh, items[0].Risk)
	assert.Equal(t, approvals.UnlimitedAmount, items[0].Amount)
	assert.True(t, items[0].Unlimited)
}

func TestMoralisNFTKindMapping(t *testing.T) {
	tests := []struct {
		contractType interface{}
		want         approvals.Kind
	}{
		{"ERC721", approvals.KindNFT},
		{"erc721", approvals.KindNFT},
		{"ERC1155", approvals.KindNFT},
		{"Erc1155", approvals.KindNFT},
		{"ERC20", approvals.KindToken},
		{nil, approvals.KindToken},
	}
	for _, tt := range tests {
		srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write(moralisPayload([]map[string]interface{}{
				moralisRecord("X", tt.contractType, "Label", "1", "1"),
			}))
		})
		m := NewMoralis("base", "KEY")
		m.baseURL = srv.URL

		items, err := m.GetApprovals(context.Background(), "0xowner")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, tt.want, items[0].Kind, "contract_type %v", tt.contractType)
	}
}

func TestMoralisMissingSymbolFallsBack(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(moralisPayload([]map[string]interface{}{
			moralisRecord(nil, "ERC20", "Label", "1", "1"),
		}))
	})
	m := NewMoralis("base", "KEY")
	m.baseURL = srv.URL

	items, err := m.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, approvals.UnknownSymbol, items[0].TokenSymbol)
}

func TestMoralisIDsUniqueAndOrdered(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(moralisPayload([]map[string]interface{}{
			moralisRecord("A", "ERC20", "L", "1", "1"),
			moralisRecord("B", "ERC20", "L", "2", "2"),
			moralisRecord("C", "ERC721", "L", "1", "1"),
		}))
	})
	m := NewMoralis("base", "KEY")
	m.baseURL = srv.URL

	items, err := m.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"mor-0", "mor-1", "mor-2"},
		[]string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "A", items[0].TokenSymbol, "index order preserved")
}

func TestMoralisHTTPError(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	m := NewMoralis("base", "KEY")
	m.baseURL = srv.URL

	_, err := m.GetApprovals(context.Background(), "0xowner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}

// ---------------------------------------------------------------------------
// Alchemy
// ---------------------------------------------------------------------------

func TestNewAlchemyNilGuards(t *testing.T) {
	assert.Nil(t, NewAlchemy("base", ""))
	assert.Nil(t, NewAlchemy("polygon", "KEY"))
	require.NotNil(t, NewAlchemy("base", "KEY"))
}

func TestAlchemyNormalizesAllowances(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alchemy_getTokenAllowances", req.Method)
		w.Write(alchemyPayload([]map[string]interface{}{
			{"tokenAddress": "0xt1", "tokenSymbol": "USDC", "spender": "0xs1", "allowance": "1000", "contractType": "ERC20"},
			{"tokenAddress": "0xt2", "tokenSymbol": "", "spender": "0xs2", "allowance": "unlimited", "contractType": "ERC1155"},
		}))
	})

	a := NewAlchemy("base", "KEY")
	a.baseURL = srv.URL

	items, err := a.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "alc-0", items[0].ID)
	assert.Equal(t, "1000", items[0].Amount)
	// The allowances shape has no spender labels, so risk is always high.
	assert.Equal(t, approvals.RiskHigh, items[0].Risk)
	assert.Equal(t, approvals.KindToken, items[0].Kind)

	assert.Equal(t, approvals.UnknownSymbol, items[1].TokenSymbol)
	assert.Equal(t, approvals.UnlimitedAmount, items[1].Amount)
	assert.True(t, items[1].Unlimited)
	assert.Equal(t, approvals.KindNFT, items[1].Kind)
}

func TestAlchemyMaxUintIsUnlimited(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(alchemyPayload([]map[string]interface{}{
			{"tokenAddress": "0xt", "tokenSymbol": "X", "spender": "0xs", "allowance": maxUint256},
		}))
	})
	a := NewAlchemy("base", "KEY")
	a.baseURL = srv.URL

	items, err := a.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Unlimited)
}

func TestAlchemyRPCError(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]interface{}{"code": -32000, "message": "capacity exceeded"},
		})
	})
	a := NewAlchemy("base", "KEY")
	a.baseURL = srv.URL

	_, err := a.GetApprovals(context.Background(), "0xowner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity exceeded")
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

type stubProvider struct {
	name  string
	items []approvals.Item
	err   error
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) GetApprovals(context.Context, string) ([]approvals.Item, error) {
	return s.items, s.err
}

func TestRegistryFirstSuccessWins(t *testing.T) {
	reg := New(
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", items: []approvals.Item{{ID: "b-0"}}},
		&stubProvider{name: "c", items: []approvals.Item{{ID: "c-0"}}},
	)

	res, err := reg.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	assert.Equal(t, "b", res.Source)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "b-0", res.Items[0].ID)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "a: down")
}

func TestRegistryEmptySuccessIsFinal(t *testing.T) {
	reg := New(
		&stubProvider{name: "a", items: nil},
		&stubProvider{name: "b", items: []approvals.Item{{ID: "b-0"}}},
	)

	res, err := reg.GetApprovals(context.Background(), "0xowner")
	require.NoError(t, err)
	assert.Equal(t, "a", res.Source, "a clean wallet is an answer, not a fall-through")
	assert.Empty(t, res.Items)
}

func TestRegistryAllFailed(t *testing.T) {
	reg := New(
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", err: errors.New("also down")},
	)

	res, err := reg.GetApprovals(context.Background(), "0xowner")
	assert.ErrorIs(t, err, ErrAllFailed)
	assert.Len(t, res.Warnings, 2)
}

func TestBuildRegistryFiltersUnconfigured(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	reg := BuildRegistry("base", cfg)
	assert.Empty(t, reg.Names())

	cfg.SetProviderKey("moralis", "KEY")
	cfg.SetProviderKey("alchemy", "KEY")
	reg = BuildRegistry("base", cfg)
	assert.Equal(t, []string{"moralis", "alchemy"}, reg.Names())
}
