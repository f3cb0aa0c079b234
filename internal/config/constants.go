package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitApprove        = uint64(60_000) // ERC-20 approve(spender, 0)
	GasLimitApprovalForAll = uint64(80_000) // ERC-721/1155 setApprovalForAll(op, false)
)

// Timeout constants used across cmd and server packages.
const (
	IndexFetchTimeout = 12 * time.Second // approvals index HTTP calls
	SecurityTimeout   = 6 * time.Second  // per-token honeypot probe
	TxConfirmTimeout  = 3 * time.Minute  // transaction confirmation wait
	PushTimeout       = 10 * time.Second // per-subscriber notification POST
	ShutdownTimeout   = 10 * time.Second // graceful server shutdown
)
