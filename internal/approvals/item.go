// Package approvals holds the normalized approval model, risk
// classification, trust scoring, and the selection state container.
// Everything here is pure: index adapters live in internal/providers,
// submission in internal/revoke.
package approvals

import "strings"

// Risk is the coarse risk classification of one approval.
type Risk string

const (
	RiskLow  Risk = "low"
	RiskHigh Risk = "high"
)

// Kind distinguishes fungible-token approvals from NFT operator grants.
type Kind string

const (
	KindToken Kind = "TOKEN"
	KindNFT   Kind = "NFT"
)

// Display sentinels for fields the index may omit.
const (
	UnknownSymbol   = "UNKNOWN"
	GenericSpender  = "Contract"
	UnlimitedAmount = "∞"
)

// Item is one outstanding permission grant discovered for an address.
// Ids are unique and stable within a single scan result (they key the
// selection set) but carry no meaning across rescans.
type Item struct {
	ID           string `json:"id"`
	TokenAddress string `json:"token_address"`
	TokenSymbol  string `json:"token_symbol"`
	SpenderAddr  string `json:"spender_address"`
	SpenderLabel string `json:"spender_label"`
	Amount       string `json:"amount"` // display string; UnlimitedAmount for unbounded grants
	Risk         Risk   `json:"risk"`
	Kind         Kind   `json:"kind"`

	Unlimited bool `json:"unlimited"` // raw allowance was unbounded
	Honeypot  bool `json:"honeypot"`  // flagged by the (optional) security probe
}

// KindFromContractType maps an index contract-type string to a Kind.
// ERC721 and ERC1155 (any casing) are NFTs; everything else, including
// an absent type, is a fungible token.
func KindFromContractType(contractType string) Kind {
	switch strings.ToUpper(contractType) {
	case "ERC721", "ERC1155":
		return KindNFT
	default:
		return KindToken
	}
}

// Classify derives the risk level from the normalized signals: an
// unlabeled spender, an unlimited allowance, or a honeypot flag each
// force RiskHigh on their own.
func Classify(hasLabel bool, unlimited, honeypot bool) Risk {
	if !hasLabel || unlimited || honeypot {
		return RiskHigh
	}
	return RiskLow
}

// HighRiskCount returns the number of high-risk items.
func HighRiskCount(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Risk == RiskHigh {
			n++
		}
	}
	return n
}
