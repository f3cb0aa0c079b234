package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/wardenlabs/warden/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
	network string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Approval hygiene for your wallet",
	Long: `warden — scan, score and revoke your outstanding token approvals.

  Every approve() you ever signed is still live until you revoke it.
  warden lists them, flags the risky ones, scores your wallet, and
  revokes what you select in one batch (or sequentially when the
  account can't batch).

The --network flag overrides the configured chain for one invocation
(default: base). Persist with: warden config set-default-network <chain>`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if network != "" {
			cfg.DefaultNetwork = network
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.Banner())
		cmd.Help() //nolint:errcheck
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// WARDEN_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("WARDEN_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.warden)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&network, "network", "", "chain to use for this invocation (default: config)")

	// Register all sub-commands.
	rootCmd.AddCommand(
		scanCmd,
		scoreCmd,
		revokeCmd,
		walletCmd,
		configCmd,
		serveCmd,
		remindCmd,
	)
}
