package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultNetwork = "base"
	defaultPenalty = 15
	defaultFloor   = 10
	defaultDelay   = 4 // seconds
	defaultRetries = 3

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.warden.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".warden")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.ProviderKeys == nil {
		cfg.ProviderKeys = make(map[string]string)
	}
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.RiskPenalty <= 0 {
		cfg.RiskPenalty = defaultPenalty
	}
	if cfg.ScoreFloor < 0 {
		cfg.ScoreFloor = defaultFloor
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// GetProviderKey returns the API key for a provider ("moralis",
// "alchemy", "goplus"). Environment variables WARDEN_<PROVIDER>_KEY
// take precedence over the stored value.
func (c *Config) GetProviderKey(name string) string {
	if v := os.Getenv("WARDEN_" + strings.ToUpper(name) + "_KEY"); v != "" {
		return v
	}
	return c.ProviderKeys[name]
}

// SetProviderKey stores an API key for a provider.
func (c *Config) SetProviderKey(name, key string) {
	if c.ProviderKeys == nil {
		c.ProviderKeys = make(map[string]string)
	}
	c.ProviderKeys[name] = key
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json for this config dir.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// LoadServer reads server settings from the environment. Call
// godotenv.Load beforehand if a .env file should contribute.
func LoadServer() ServerConfig {
	sc := ServerConfig{
		Addr:        envOr("WARDEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CronSecret:  os.Getenv("CRON_SECRET"),
		AppURL:      os.Getenv("WARDEN_APP_URL"),
		AuthJWKSURL: envOr("WARDEN_AUTH_JWKS_URL", "https://auth.farcaster.xyz/.well-known/jwks.json"),
		Domain:      os.Getenv("WARDEN_DOMAIN"),

		AssocHeader:    os.Getenv("WARDEN_ASSOC_HEADER"),
		AssocPayload:   os.Getenv("WARDEN_ASSOC_PAYLOAD"),
		AssocSignature: os.Getenv("WARDEN_ASSOC_SIGNATURE"),
	}
	if b, err := strconv.ParseBool(os.Getenv("WARDEN_NOTIFY_BULK")); err == nil {
		sc.NotifyBulk = b
	}
	return sc
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		RiskPenalty:    defaultPenalty,
		ScoreFloor:     defaultFloor,
		SettleDelay:    defaultDelay,
		SettleRetries:  defaultRetries,
		ProviderKeys:   make(map[string]string),
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
