package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/config"
)

// moralisChainID maps chain slugs to Moralis hex chain identifiers.
var moralisChainID = map[string]string{
	"ethereum": "0x1",
	"base":     "0x2105",
	"optimism": "0xa",
}

const moralisBaseURL = "https://deep-index.moralis.io/api/v2.2"

// Moralis fetches wallet approvals from the Moralis Deep Index API
// (the `result[]` shape with nested token/spender objects).
// It requires an API key and is nil-guarded: NewMoralis returns nil if no key is set.
type Moralis struct {
	chainName string
	hexChain  string
	apiKey    string
	baseURL   string // defaults to moralisBaseURL; overridable in tests
}

// NewMoralis creates a Moralis provider.
// Returns nil if apiKey is empty or the chain is not supported.
func NewMoralis(chainName, apiKey string) *Moralis {
	if apiKey == "" {
		return nil
	}
	hex, ok := moralisChainID[chainName]
	if !ok {
		return nil
	}
	return &Moralis{chainName: chainName, hexChain: hex, apiKey: apiKey, baseURL: moralisBaseURL}
}

func (m *Moralis) Name() string { return "moralis" }

// moralisApproval is a single record from /wallets/{address}/approvals.
// address_label is a pointer on purpose: null (no label known) is a
// risk signal distinct from an empty string.
type moralisApproval struct {
	Token struct {
		Address      string  `json:"address"`
		Symbol       *string `json:"symbol"`
		ContractType *string `json:"contract_type"`
	} `json:"token"`
	Spender struct {
		Address      string  `json:"address"`
		AddressLabel *string `json:"address_label"`
	} `json:"spender"`
	Value          string `json:"value"`           // "unlimited" or raw integer string
	ValueFormatted string `json:"value_formatted"` // "Unlimited" or human-formatted
}

type moralisResp struct {
	Result []moralisApproval `json:"result"`
}

func (m *Moralis) GetApprovals(ctx context.Context, address string) ([]approvals.Item, error) {
	url := fmt.Sprintf("%s/wallets/%s/approvals?chain=%s", m.baseURL, address, m.hexChain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", m.apiKey)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: config.IndexFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var result moralisResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	items := make([]approvals.Item, 0, len(result.Result))
	for i, rec := range result.Result {
		symbol := approvals.UnknownSymbol
		if rec.Token.Symbol != nil && *rec.Token.Symbol != "" {
			symbol = *rec.Token.Symbol
		}

		hasLabel := rec.Spender.AddressLabel != nil && *rec.Spender.AddressLabel != ""
		label := approvals.GenericSpender
		if hasLabel {
			label = *rec.Spender.AddressLabel
		}

		unlimited := strings.EqualFold(rec.Value, "unlimited") ||
			strings.EqualFold(rec.ValueFormatted, "unlimited")
		amount := rec.ValueFormatted
		if unlimited {
			amount = approvals.UnlimitedAmount
		} else if amount == "" {
			amount = rec.Value
		}

		contractType := ""
		if rec.Token.ContractType != nil {
			contractType = *rec.Token.ContractType
		}

		items = append(items, approvals.Item{
			ID:           fmt.Sprintf("mor-%d", i),
			TokenAddress: rec.Token.Address,
			TokenSymbol:  symbol,
			SpenderAddr:  rec.Spender.Address,
			SpenderLabel: label,
			Amount:       amount,
			Risk:         approvals.Classify(hasLabel, unlimited, false),
			Kind:         approvals.KindFromContractType(contractType),
			Unlimited:    unlimited,
		})
	}
	return items, nil
}
