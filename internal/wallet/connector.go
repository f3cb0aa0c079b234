package wallet

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// HostWalletEnv is set by an embedding host to hand warden a wallet
// without any interaction: either the name of a configured wallet or a
// bare 0x address (connected watch-only).
const HostWalletEnv = "WARDEN_HOST_WALLET"

// PickFunc chooses a wallet interactively when the host provides none.
type PickFunc func(ctx context.Context, wallets []*Wallet) (*Wallet, error)

// Connector resolves the active wallet for a session.
type Connector struct {
	mgr  *Manager
	pick PickFunc
}

// NewConnector creates a connector. pick may be nil, in which case the
// default wallet is used when several are configured.
func NewConnector(mgr *Manager, pick PickFunc) *Connector {
	return &Connector{mgr: mgr, pick: pick}
}

// Connect resolves the wallet for this session. A host-provided wallet
// wins and never prompts; otherwise a single configured wallet is used
// directly, then the default, then the interactive picker.
func (c *Connector) Connect(ctx context.Context) (*Wallet, error) {
	if host := os.Getenv(HostWalletEnv); host != "" {
		return c.connectHost(host)
	}

	wallets := c.mgr.List()
	switch {
	case len(wallets) == 0:
		return nil, fmt.Errorf("no wallets configured — run `warden wallet add`")
	case len(wallets) == 1:
		return wallets[0], nil
	}

	if d := c.mgr.Default(); d != nil {
		return d, nil
	}
	if c.pick == nil {
		return nil, fmt.Errorf("multiple wallets and no default — run `warden wallet default <name>`")
	}
	return c.pick(ctx, wallets)
}

func (c *Connector) connectHost(host string) (*Wallet, error) {
	if w, err := c.mgr.Get(host); err == nil {
		return w, nil
	}
	if strings.HasPrefix(strings.ToLower(host), "0x") {
		return &Wallet{Name: "host", Address: host, Type: TypeWatchOnly}, nil
	}
	return nil, fmt.Errorf("host wallet %q is not configured", host)
}

var (
	readyOnce sync.Once

	// readyWriter is swapped in tests.
	readyWriter io.Writer = os.Stdout
)

// SignalReady emits the host handshake. It fires exactly once per
// process no matter how many times it is called, and never blocks on a
// connection being established.
func SignalReady() {
	readyOnce.Do(func() {
		fmt.Fprintln(readyWriter, "warden:ready")
	})
}
