package chain

import (
	"errors"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds all metadata for a single supported chain.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	HexChainID     string   `json:"hex_chain_id"` // 0x-prefixed, used by index APIs and EIP-5792
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
}

// Registry is the chain registry. Warden is an approval-hygiene tool
// for Base first; Optimism and Ethereum are supported for scoring.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates the registry of supported chains.
func NewRegistry() *Registry {
	chains := []Chain{
		{
			Name:           "base",
			DisplayName:    "Base",
			ChainID:        8453,
			HexChainID:     "0x2105",
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			Explorer:       "https://basescan.org",
		},
		{
			Name:           "optimism",
			DisplayName:    "Optimism",
			ChainID:        10,
			HexChainID:     "0xa",
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.optimism.io"},
			Explorer:       "https://optimistic.etherscan.io",
		},
		{
			Name:           "ethereum",
			DisplayName:    "Ethereum",
			ChainID:        1,
			HexChainID:     "0x1",
			NativeCurrency: "ETH",
			RPCs:           []string{"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"},
			Explorer:       "https://etherscan.io",
		},
	}

	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "base").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// RPC returns the first RPC endpoint, preferring custom URLs when given.
func (c *Chain) RPC(custom []string) string {
	if len(custom) > 0 {
		return custom[0]
	}
	if len(c.RPCs) > 0 {
		return c.RPCs[0]
	}
	return ""
}
