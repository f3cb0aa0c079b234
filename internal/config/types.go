package config

// Config holds all warden configuration.
type Config struct {
	DefaultNetwork string `json:"default_network" mapstructure:"default_network"` // "base" | "optimism" | "ethereum"
	DefaultWallet  string `json:"default_wallet"  mapstructure:"default_wallet"`

	// Risk scoring. Score starts at 100 and loses RiskPenalty per
	// high-risk approval, never dropping below ScoreFloor.
	RiskPenalty int `json:"risk_penalty" mapstructure:"risk_penalty"`
	ScoreFloor  int `json:"score_floor"  mapstructure:"score_floor"`

	// SecurityChecks enables the per-token honeypot/scam-symbol probe
	// during scans. Off by default: it adds one HTTP call per token.
	SecurityChecks bool `json:"security_checks" mapstructure:"security_checks"`

	// Revoke settlement. The approvals index lags chain state, so a
	// rescan waits SettleDelay seconds and then polls up to
	// SettleRetries times for the revoked entries to disappear.
	SettleDelay   int `json:"settle_delay"   mapstructure:"settle_delay"`
	SettleRetries int `json:"settle_retries" mapstructure:"settle_retries"`

	// PaymasterURL, when set, is attached to batched submissions as a
	// paymasterService capability. Accounts that don't support it pay
	// gas normally; this is never an error.
	PaymasterURL string `json:"paymaster_url" mapstructure:"paymaster_url"`

	ProviderKeys map[string]string   `json:"provider_keys" mapstructure:"provider_keys"` // "moralis" | "alchemy" | "goplus"
	CustomRPCs   map[string][]string `json:"custom_rpcs"   mapstructure:"custom_rpcs"`

	// internal: config dir path used for Save()
	configDir string
}

// ServerConfig holds settings for `warden serve`, sourced from the
// environment (optionally via a .env file) rather than config.json so
// secrets never land in the user's dotdir.
type ServerConfig struct {
	Addr        string // WARDEN_ADDR, default ":8080"
	DatabaseURL string // DATABASE_URL; empty = in-memory subscriber store
	CronSecret  string // CRON_SECRET, guards /api/cron/remind
	AppURL      string // WARDEN_APP_URL, notification target + manifest home
	AuthJWKSURL string // WARDEN_AUTH_JWKS_URL, quick-auth key set
	Domain      string // WARDEN_DOMAIN, expected JWT audience
	NotifyBulk  bool   // WARDEN_NOTIFY_BULK, bulk provider send instead of per-subscriber push

	// Signed account association for the farcaster.json manifest
	// (WARDEN_ASSOC_HEADER / _PAYLOAD / _SIGNATURE). Served verbatim.
	AssocHeader    string
	AssocPayload   string
	AssocSignature string
}
