package providers

import "github.com/wardenlabs/warden/internal/config"

// BuildRegistry assembles a provider Registry for the given chain, in
// priority order:
//
//  1. Moralis — richest shape (spender labels, contract types); key-gated
//  2. Alchemy — allowances-only fallback; key-gated
//
// Constructors that return nil (unsupported chain or missing key) are
// filtered out. An empty registry is valid; scans against it fail with
// ErrAllFailed, which the CLI reports as "no provider configured".
func BuildRegistry(chainName string, cfg *config.Config) *Registry {
	var ps []Provider

	if m := NewMoralis(chainName, cfg.GetProviderKey("moralis")); m != nil {
		ps = append(ps, m)
	}
	if a := NewAlchemy(chainName, cfg.GetProviderKey("alchemy")); a != nil {
		ps = append(ps, a)
	}

	return New(ps...)
}
