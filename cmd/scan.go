package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/providers"
	"github.com/wardenlabs/warden/internal/scan"
	"github.com/wardenlabs/warden/internal/ui"
)

var (
	scanWallet string
	scanJSON   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [address]",
	Short: "List outstanding approvals and your trust score",
	Long: `Scan a wallet for outstanding ERC-20 approvals and NFT operator
grants, annotate each with a risk level, and compute the trust score.

Without an argument the connected wallet is scanned.

Examples:
  warden scan
  warden scan 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045
  warden scan vitalik --network ethereum --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain(network)
		if err != nil {
			return err
		}

		mgr := newWalletManager()
		var address string
		if len(args) > 0 {
			address, err = resolveAddress(mgr, args[0])
		} else {
			w, werr := connectWallet(cmd.Context(), mgr, scanWallet)
			if werr != nil {
				return werr
			}
			address = w.Address
		}
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Scanning approvals on %s...", c.DisplayName))
		spin.Start()
		res, err := buildScanner(c).Scan(cmd.Context(), address)
		spin.Stop()
		if err != nil {
			if errors.Is(err, providers.ErrAllFailed) {
				for _, w := range res.Warnings {
					fmt.Println(ui.Warn(w))
				}
				return fmt.Errorf("no approvals index available — set a key with: warden config set-key moralis <key>")
			}
			return err
		}

		if scanJSON {
			return printScanJSON(cmd, address, res)
		}
		printScan(address, c.DisplayName, res)
		return nil
	},
}

func printScan(address, chainName string, res *scan.Result) {
	fmt.Println()
	fmt.Println(ui.StyleTitle.Render("  Trust score · " + ui.TruncateAddr(address)))
	fmt.Println("  " + ui.ScoreBar(res.Score))
	fmt.Println()

	if len(res.Items) == 0 {
		fmt.Println(ui.Success("No outstanding approvals. Clean wallet."))
		return
	}

	t := ui.NewTable([]ui.Column{
		{Title: "Risk", Width: 6},
		{Title: "Token", Width: 10},
		{Title: "Kind", Width: 6},
		{Title: "Amount", Width: 12},
		{Title: "Spender", Width: 20},
		{Title: "Address", Width: 14},
	})
	for _, it := range res.Items {
		t.AddRow(ui.Row{
			string(it.Risk),
			it.TokenSymbol,
			string(it.Kind),
			it.Amount,
			it.SpenderLabel,
			ui.TruncateAddr(it.SpenderAddr),
		})
	}
	fmt.Println(t.Render())

	fmt.Println(ui.Meta(scanSummary(res)))
	for _, w := range res.Warnings {
		fmt.Println(ui.Warn(w))
	}
	if approvals.HighRiskCount(res.Items) > 0 {
		fmt.Println(ui.Hint("Revoke the risky ones with: warden revoke"))
	}
}

// scanSummary is the one-line footer under the approval table.
func scanSummary(res *scan.Result) string {
	high := approvals.HighRiskCount(res.Items)
	return fmt.Sprintf("%d approval(s), %d high-risk · source: %s", len(res.Items), high, res.Source)
}

func printScanJSON(cmd *cobra.Command, address string, res *scan.Result) error {
	out := struct {
		Address  string           `json:"address"`
		Score    int              `json:"score"`
		Items    []approvals.Item `json:"approvals"`
		Source   string           `json:"source"`
		Warnings []string         `json:"warnings,omitempty"`
	}{address, res.Score, res.Items, res.Source, res.Warnings}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	scanCmd.Flags().StringVar(&scanWallet, "wallet", "", "wallet name (default: connected wallet)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "machine-readable output")
}
