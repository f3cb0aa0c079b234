// Package scan composes the approvals pipeline: index lookup through
// the provider registry, the optional security probe, and trust
// scoring. It owns no state — every Scan recomputes the result
// wholesale from the index.
package scan

import (
	"context"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/providers"
)

// Index is the approvals-index boundary (satisfied by *providers.Registry).
type Index interface {
	GetApprovals(ctx context.Context, address string) (*providers.Result, error)
}

// Prober is the optional token-security boundary (satisfied by *security.Prober).
type Prober interface {
	Flagged(ctx context.Context, tokenAddr, symbol string) bool
}

// Scanner converts a wallet address into a risk-annotated approval
// list plus an aggregate trust score.
type Scanner struct {
	index   Index
	prober  Prober // nil when security checks are off
	penalty int
	floor   int
}

// New creates a Scanner. prober may be nil.
func New(index Index, prober Prober, penalty, floor int) *Scanner {
	return &Scanner{index: index, prober: prober, penalty: penalty, floor: floor}
}

// Result is one complete scan outcome.
type Result struct {
	Items    []approvals.Item
	Score    int
	Source   string   // provider that supplied the data
	Warnings []string // non-fatal provider errors
}

// Scan fetches and annotates approvals for address. Items come back in
// index order. When the security probe is enabled, flagged tokens are
// escalated to high risk before scoring; probe failures never escalate
// anything and never fail the scan.
func (s *Scanner) Scan(ctx context.Context, address string) (*Result, error) {
	res, err := s.index.GetApprovals(ctx, address)
	if err != nil {
		out := &Result{Score: 100}
		if res != nil {
			out.Warnings = res.Warnings
		}
		return out, err
	}

	items := res.Items
	if s.prober != nil {
		for i := range items {
			if s.prober.Flagged(ctx, items[i].TokenAddress, items[i].TokenSymbol) {
				items[i].Honeypot = true
				items[i].Risk = approvals.RiskHigh
			}
		}
	}

	return &Result{
		Items:    items,
		Score:    approvals.Score(items, s.penalty, s.floor),
		Source:   res.Source,
		Warnings: res.Warnings,
	}, nil
}
