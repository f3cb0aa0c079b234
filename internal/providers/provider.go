// Package providers contains the approvals-index adapters. Each
// provider speaks one third-party API shape and normalizes it into
// []approvals.Item so nothing downstream ever sees provider JSON.
package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenlabs/warden/internal/approvals"
)

// ErrAllFailed is returned when every provider in the registry fails.
var ErrAllFailed = errors.New("all providers failed")

// Provider fetches outstanding approvals for an address.
type Provider interface {
	Name() string
	GetApprovals(ctx context.Context, address string) ([]approvals.Item, error)
}

// Registry tries providers in order and returns the first successful result.
type Registry struct {
	providers []Provider
}

// New creates a Registry from an ordered list of providers.
func New(ps ...Provider) *Registry {
	return &Registry{providers: ps}
}

// Result carries the fetched approvals and the provider that supplied them.
type Result struct {
	Items    []approvals.Item
	Source   string
	Warnings []string // non-fatal provider errors
}

// GetApprovals tries each provider in order. It collects warnings from
// providers that fail, and returns on the first provider that returns
// data. A provider succeeding with zero records is a valid final
// answer (the wallet is clean), not a reason to fall through.
func (r *Registry) GetApprovals(ctx context.Context, address string) (*Result, error) {
	res := &Result{}
	for _, p := range r.providers {
		items, err := p.GetApprovals(ctx, address)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		res.Items = items
		res.Source = p.Name()
		return res, nil
	}
	return res, ErrAllFailed
}

// Names returns the names of all registered providers (for display).
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}
