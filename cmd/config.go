package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetDefaultNetworkCmd = &cobra.Command{
	Use:   "set-default-network <chain>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := resolveChain(args[0]); err != nil {
			return err
		}
		cfg.DefaultNetwork = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %q", args[0])))
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider> <key>",
	Short: "Store an API key for an index or security provider",
	Long: `Store an API key. Providers: moralis, alchemy, goplus.

Environment variables WARDEN_MORALIS_KEY / WARDEN_ALCHEMY_KEY /
WARDEN_GOPLUS_KEY take precedence over stored keys.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.SetProviderKey(args[0], args[1])
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Key for %q stored.", args[0])))
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <chain> <url>",
	Short: "Add a custom RPC for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if err := cfg.AddRPC(chainName, url); err != nil {
			// Already exists — not fatal.
			fmt.Println(ui.Warn(err.Error()))
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC for %s set to %s", chainName, url)))
		return nil
	},
}

var configSecurityCmd = &cobra.Command{
	Use:   "security <on|off>",
	Short: "Toggle the per-token security probe during scans",
	Long: `Toggle the honeypot/scam-token probe. When on, every scanned token is
checked against the security API (one extra HTTP call per token) and
flagged tokens are escalated to high risk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "on":
			cfg.SecurityChecks = true
		case "off":
			cfg.SecurityChecks = false
		default:
			return fmt.Errorf("expected \"on\" or \"off\", got %q", args[0])
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Security checks " + args[0] + "."))
		return nil
	},
}

var configSetScoringCmd = &cobra.Command{
	Use:   "set-scoring <penalty> <floor>",
	Short: "Set the trust-score penalty per high-risk approval and the floor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		penalty, err := strconv.Atoi(args[0])
		if err != nil || penalty <= 0 {
			return fmt.Errorf("penalty must be a positive integer, got %q", args[0])
		}
		floor, err := strconv.Atoi(args[1])
		if err != nil || floor < 0 || floor > 100 {
			return fmt.Errorf("floor must be between 0 and 100, got %q", args[1])
		}
		cfg.RiskPenalty = penalty
		cfg.ScoreFloor = floor
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Scoring set: -%d per high-risk approval, floor %d.", penalty, floor)))
		return nil
	},
}

var configSetSettleCmd = &cobra.Command{
	Use:   "set-settle <delay-seconds> <retries>",
	Short: "Set the post-revoke rescan delay and retry count",
	Long: `Set how long warden waits for the approvals index to catch up after a
revocation: the delay before each rescan and how many rescans to try.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delay, err := strconv.Atoi(args[0])
		if err != nil || delay < 0 {
			return fmt.Errorf("delay must be a non-negative integer, got %q", args[0])
		}
		retries, err := strconv.Atoi(args[1])
		if err != nil || retries <= 0 {
			return fmt.Errorf("retries must be a positive integer, got %q", args[1])
		}
		cfg.SettleDelay = delay
		cfg.SettleRetries = retries
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Settle poll: %ds delay, %d retries.", delay, retries)))
		return nil
	},
}

var configSetPaymasterCmd = &cobra.Command{
	Use:   "set-paymaster <url>",
	Short: "Set the paymaster service URL for sponsored batches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.PaymasterURL = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Paymaster URL stored."))
		fmt.Println(ui.Hint("Accounts that don't support sponsorship simply pay gas themselves."))
		return nil
	},
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetDefaultNetworkCmd,
		configSetKeyCmd,
		configSetRPCCmd,
		configSecurityCmd,
		configSetScoringCmd,
		configSetSettleCmd,
		configSetPaymasterCmd,
	)
}
