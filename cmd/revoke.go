package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/chain"
	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/revoke"
	"github.com/wardenlabs/warden/internal/ui"
	"github.com/wardenlabs/warden/internal/wallet"
)

var (
	revokeWallet string
	revokeAll    bool
	revokeHigh   bool
	revokeYes    bool
	revokeWait   bool
)

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke selected approvals in one batch",
	Long: `Scan the connected wallet, pick approvals to revoke, and submit the
revocations.

Wallets that advertise atomic batching (EIP-5792) get everything in a
single bundle; everyone else gets individually signed transactions,
continuing past per-item failures. Afterwards the index is polled until
the revoked entries disappear and the fresh score is shown.

Examples:
  warden revoke                  # interactive selection
  warden revoke --high --yes     # revoke every high-risk approval
  warden revoke --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := resolveChain(network)
		if err != nil {
			return err
		}

		mgr := newWalletManager()
		w, err := connectWallet(ctx, mgr, revokeWallet)
		if err != nil {
			return err
		}
		if w.Type != wallet.TypeSigning {
			return fmt.Errorf("wallet %q is watch-only — revoking needs a signing wallet (warden wallet generate)", w.Name)
		}

		sc := buildScanner(c)
		spin := ui.NewSpinner(fmt.Sprintf("Scanning approvals on %s...", c.DisplayName))
		spin.Start()
		res, err := sc.Scan(ctx, w.Address)
		spin.Stop()
		if err != nil {
			return err
		}
		if len(res.Items) == 0 {
			fmt.Println(ui.Success("No outstanding approvals. Nothing to revoke."))
			return nil
		}

		selected, err := selectForRevocation(res.Items, res.Score)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Println(ui.Meta("Nothing selected."))
			return nil
		}

		fmt.Println()
		fmt.Println(ui.Warn(fmt.Sprintf("About to revoke %d approval(s) from %s on %s.",
			len(selected), ui.TruncateAddr(w.Address), c.DisplayName)))
		if !revokeYes && !ui.ConfirmDanger("Submit the revocations?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		client := chain.NewEVMClient(c.RPC(cfg.GetRPCs(c.Name)))
		if id, err := client.ChainID(); err == nil && id != c.ChainID {
			return fmt.Errorf("RPC %s reports chain id %d, expected %d (%s) — check your custom RPC",
				client.URL(), id, c.ChainID, c.Name)
		}
		signer := wallet.NewSigner(w, mgr.Keystore())
		sub := revoke.NewSubmitter(client, signer, c, cfg.PaymasterURL)

		spin = ui.NewSpinner("Submitting revocations...")
		spin.Start()
		report, err := sub.Submit(ctx, selected)
		spin.Stop()
		if err != nil {
			return err
		}
		printReport(report, c)

		if revokeWait && report.Mode == revoke.ModeSequential {
			waitForReceipts(client, report)
			verifyOnChain(client, w.Address, selected)
		}

		spin = ui.NewSpinner("Waiting for the index to catch up...")
		spin.Start()
		fresh, settled := revoke.WaitSettled(ctx, sc, w.Address, selected,
			time.Duration(cfg.SettleDelay)*time.Second, cfg.SettleRetries)
		spin.Stop()

		if fresh != nil {
			fmt.Println()
			fmt.Println("  " + ui.ScoreBar(fresh.Score))
		}
		if settled {
			fmt.Println(ui.Success("Revocations settled."))
		} else {
			fmt.Println(ui.Warn("Index still shows some entries — it can lag a few minutes behind chain state."))
		}
		return nil
	},
}

// selectForRevocation resolves the --all/--high shortcuts or runs the
// interactive review screen.
func selectForRevocation(items []approvals.Item, score int) ([]approvals.Item, error) {
	sel := approvals.NewSelection()

	switch {
	case revokeAll:
		for _, it := range items {
			sel.Toggle(it.ID)
		}
	case revokeHigh:
		for _, it := range items {
			if it.Risk == approvals.RiskHigh {
				sel.Toggle(it.ID)
			}
		}
	default:
		ids, err := ui.ReviewApprovals(items, score)
		if err != nil {
			return nil, err
		}
		sel.SelectAll(ids)
	}

	return sel.Resolve(items), nil
}

func printReport(report *revoke.Report, c *chain.Chain) {
	fmt.Println()
	if report.Mode == revoke.ModeAtomic {
		fmt.Println(ui.Success("Submitted as one atomic bundle."))
		fmt.Println(ui.Meta("  bundle: " + report.BundleID))
		return
	}

	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Println(ui.Err(fmt.Sprintf("%s: %v", r.ItemID, r.Err)))
			continue
		}
		fmt.Println(ui.Success("tx " + r.TxHash))
		fmt.Println(ui.Hint(c.Explorer + "/tx/" + r.TxHash))
	}
	if n := report.Failed(); n > 0 {
		fmt.Println(ui.Warn(fmt.Sprintf("%d revocation(s) failed — re-run `warden revoke` to retry them.", n)))
	}
}

// waitForReceipts blocks until each broadcast transaction is mined,
// reporting reverts. Only meaningful in sequential mode; a bundle has
// no per-tx hashes to poll.
func waitForReceipts(client *chain.EVMClient, report *revoke.Report) {
	for _, r := range report.Results {
		if r.Err != nil || r.TxHash == "" {
			continue
		}
		spin := ui.NewSpinner("Waiting for " + ui.TruncateAddr(r.TxHash) + "...")
		spin.Start()
		receipt, err := client.WaitForReceipt(r.TxHash, config.TxConfirmTimeout)
		spin.Stop()
		switch {
		case err != nil:
			fmt.Println(ui.Warn(fmt.Sprintf("%s: %v", r.TxHash, err)))
		case receipt.Status != 1:
			fmt.Println(ui.Err("tx " + r.TxHash + " reverted"))
		default:
			fmt.Println(ui.Success(fmt.Sprintf("tx %s mined in block %d", ui.TruncateAddr(r.TxHash), receipt.BlockNumber)))
		}
	}
}

// verifyOnChain double-checks revoked token allowances straight from
// the chain, independently of the (lagging) index. NFT operator grants
// are skipped; isApprovedForAll has no standard single-call batch and
// the settle poll covers them.
func verifyOnChain(client *chain.EVMClient, owner string, items []approvals.Item) {
	for _, it := range items {
		if it.Kind != approvals.KindToken {
			continue
		}
		allowance, err := client.GetAllowance(it.TokenAddress, owner, it.SpenderAddr)
		if err != nil {
			continue
		}
		if allowance.Sign() == 0 {
			fmt.Println(ui.Success(it.TokenSymbol + " allowance is zero on-chain"))
		} else {
			fmt.Println(ui.Warn(fmt.Sprintf("%s still has allowance %s for %s",
				it.TokenSymbol, allowance, ui.TruncateAddr(it.SpenderAddr))))
		}
	}
}

func init() {
	revokeCmd.Flags().StringVar(&revokeWallet, "wallet", "", "wallet name (default: connected wallet)")
	revokeCmd.Flags().BoolVar(&revokeAll, "all", false, "revoke every approval without the interactive screen")
	revokeCmd.Flags().BoolVar(&revokeHigh, "high", false, "revoke every high-risk approval without the interactive screen")
	revokeCmd.Flags().BoolVarP(&revokeYes, "yes", "y", false, "skip the confirmation prompt")
	revokeCmd.Flags().BoolVar(&revokeWait, "wait", false, "wait for each sequential transaction to be mined")
	revokeCmd.MarkFlagsMutuallyExclusive("all", "high")
}
