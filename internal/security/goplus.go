// Package security implements the best-effort token security probe:
// a per-token GoPlus lookup plus scam-symbol heuristics. It is a
// secondary signal only — every failure degrades to "not flagged",
// never to a failed scan.
package security

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/wardenlabs/warden/internal/config"
)

const goplusBaseURL = "https://api.gopluslabs.io/api/v1"

// scamSymbolPatterns match token symbols used by airdrop-phishing and
// fake-claim campaigns. Checked case-insensitively.
var scamSymbolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)claim`),
	regexp.MustCompile(`(?i)airdrop`),
	regexp.MustCompile(`(?i)visit\s`),
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`(?i)\.(com|io|xyz|net|org)\b`),
	regexp.MustCompile(`(?i)reward`),
}

// Prober checks tokens against the GoPlus token_security endpoint.
type Prober struct {
	chainID int64
	client  *http.Client
	baseURL string // overridable in tests

	cache map[string]bool // token address → flagged, per-scan lifetime
}

// NewProber creates a prober for one chain.
func NewProber(chainID int64) *Prober {
	return &Prober{
		chainID: chainID,
		client:  &http.Client{Timeout: config.SecurityTimeout},
		baseURL: goplusBaseURL,
		cache:   make(map[string]bool),
	}
}

// goplusResp is the token_security response, keyed by lowercased
// contract address. GoPlus encodes booleans as "0"/"1" strings.
type goplusResp struct {
	Result map[string]struct {
		IsHoneypot  string `json:"is_honeypot"`
		TokenSymbol string `json:"token_symbol"`
	} `json:"result"`
}

// Flagged reports whether the token looks like a honeypot or carries a
// scam-pattern symbol. Any error (network, HTTP, decode) returns
// false: the probe must never escalate risk on its own failure.
func (p *Prober) Flagged(ctx context.Context, tokenAddr, symbol string) bool {
	if SymbolLooksScammy(symbol) {
		return true
	}

	key := strings.ToLower(tokenAddr)
	if flagged, ok := p.cache[key]; ok {
		return flagged
	}

	flagged := p.lookup(ctx, key)
	p.cache[key] = flagged
	return flagged
}

func (p *Prober) lookup(ctx context.Context, tokenAddr string) bool {
	url := fmt.Sprintf("%s/token_security/%d?contract_addresses=%s", p.baseURL, p.chainID, tokenAddr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var out goplusResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false
	}

	rec, ok := out.Result[tokenAddr]
	if !ok {
		return false
	}
	if rec.IsHoneypot == "1" {
		return true
	}
	return SymbolLooksScammy(rec.TokenSymbol)
}

// SymbolLooksScammy runs the scam-keyword heuristics over a symbol.
func SymbolLooksScammy(symbol string) bool {
	for _, re := range scamSymbolPatterns {
		if re.MatchString(symbol) {
			return true
		}
	}
	return false
}
