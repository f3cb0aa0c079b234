package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/config"
)

// alchemySubdomain maps chain slugs to Alchemy network subdomains.
var alchemySubdomain = map[string]string{
	"ethereum": "eth-mainnet",
	"base":     "base-mainnet",
	"optimism": "opt-mainnet",
}

// maxUint256 as a decimal string; some allowances come back as the raw
// max value instead of the literal "unlimited".
const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

// Alchemy fetches token allowances via the alchemy_getTokenAllowances
// JSON-RPC method (the `result.tokenAllowances` shape, flat records).
// It requires an API key and is nil-guarded like the other providers.
type Alchemy struct {
	chainName string
	apiKey    string
	baseURL   string // defaults to the chain's Alchemy endpoint; overridable in tests
}

// NewAlchemy creates an Alchemy provider.
// Returns nil if apiKey is empty or the chain is not supported.
func NewAlchemy(chainName, apiKey string) *Alchemy {
	if apiKey == "" {
		return nil
	}
	sub, ok := alchemySubdomain[chainName]
	if !ok {
		return nil
	}
	return &Alchemy{
		chainName: chainName,
		apiKey:    apiKey,
		baseURL:   fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", sub, apiKey),
	}
}

func (a *Alchemy) Name() string { return "alchemy" }

// alchemyAllowance is one flat record under result.tokenAllowances.
// This shape carries no spender label, so every record is missing the
// label signal by construction.
type alchemyAllowance struct {
	TokenAddress string `json:"tokenAddress"`
	TokenSymbol  string `json:"tokenSymbol"`
	Spender      string `json:"spender"`
	Allowance    string `json:"allowance"`    // decimal string, "unlimited", or max uint256
	ContractType string `json:"contractType"` // "ERC20" | "ERC721" | "ERC1155", may be absent
}

type alchemyResp struct {
	Result struct {
		TokenAllowances []alchemyAllowance `json:"tokenAllowances"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Alchemy) GetApprovals(ctx context.Context, address string) ([]approvals.Item, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "alchemy_getTokenAllowances",
		"params":  []any{map[string]any{"owner": address}},
		"id":      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: config.IndexFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var result alchemyResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", result.Error.Code, result.Error.Message)
	}

	items := make([]approvals.Item, 0, len(result.Result.TokenAllowances))
	for i, rec := range result.Result.TokenAllowances {
		symbol := rec.TokenSymbol
		if symbol == "" {
			symbol = approvals.UnknownSymbol
		}

		unlimited := strings.EqualFold(rec.Allowance, "unlimited") || rec.Allowance == maxUint256
		amount := rec.Allowance
		if unlimited {
			amount = approvals.UnlimitedAmount
		}

		items = append(items, approvals.Item{
			ID:           fmt.Sprintf("alc-%d", i),
			TokenAddress: rec.TokenAddress,
			TokenSymbol:  symbol,
			SpenderAddr:  rec.Spender,
			SpenderLabel: approvals.GenericSpender,
			Amount:       amount,
			// No label data in this shape: hasLabel is always false.
			Risk:      approvals.Classify(false, unlimited, false),
			Kind:      approvals.KindFromContractType(rec.ContractType),
			Unlimited: unlimited,
		})
	}
	return items, nil
}
