package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/wardenlabs/warden/internal/chain"
	"github.com/wardenlabs/warden/internal/providers"
	"github.com/wardenlabs/warden/internal/scan"
	"github.com/wardenlabs/warden/internal/security"
	"github.com/wardenlabs/warden/internal/ui"
	"github.com/wardenlabs/warden/internal/wallet"
)

// newWalletManager creates the wallet manager backed by the config dir.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}

// resolveChain looks up the active chain from the --network flag or config.
func resolveChain(name string) (*chain.Chain, error) {
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q (supported: base, optimism, ethereum)", name)
	}
	return c, nil
}

// buildScanner wires the provider registry and the optional security
// probe for one chain.
func buildScanner(c *chain.Chain) *scan.Scanner {
	var prober scan.Prober
	if cfg.SecurityChecks {
		prober = security.NewProber(c.ChainID)
	}
	return scan.New(providers.BuildRegistry(c.Name, cfg), prober, cfg.RiskPenalty, cfg.ScoreFloor)
}

// pickWallet is the interactive fallback when several wallets exist and
// none is default.
func pickWallet(_ context.Context, wallets []*wallet.Wallet) (*wallet.Wallet, error) {
	items := make([]ui.PickerItem, len(wallets))
	for i, w := range wallets {
		items[i] = ui.PickerItem{Label: w.Name, SubLabel: w.Address, Value: w.Name}
	}
	name, err := ui.PickItem("Select a wallet", items)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("cancelled")
	}
	for _, w := range wallets {
		if w.Name == name {
			return w, nil
		}
	}
	return nil, fmt.Errorf("wallet %q not found", name)
}

// connectWallet resolves the active wallet: the --wallet override, the
// host-provided wallet, or the connector's default/picker flow. It
// signals readiness once a wallet is attached.
func connectWallet(ctx context.Context, mgr *wallet.Manager, override string) (*wallet.Wallet, error) {
	if override != "" {
		w, err := mgr.Get(override)
		if err != nil {
			return nil, fmt.Errorf("wallet %q not found", override)
		}
		wallet.SignalReady()
		return w, nil
	}

	w, err := wallet.NewConnector(mgr, pickWallet).Connect(ctx)
	if err != nil {
		return nil, err
	}
	wallet.SignalReady()
	return w, nil
}

// resolveAddress turns a CLI argument into a 0x address: a raw address
// passes through, anything else is treated as a wallet name.
func resolveAddress(mgr *wallet.Manager, arg string) (string, error) {
	if strings.HasPrefix(arg, "0x") {
		return arg, nil
	}
	w, err := mgr.Get(arg)
	if err != nil {
		return "", fmt.Errorf("wallet %q not found", arg)
	}
	return w.Address, nil
}

func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "signing"
	}
	return "watch-only"
}
