package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/ui"
)

var scoreWallet string

var scoreCmd = &cobra.Command{
	Use:   "score [address]",
	Short: "Show the trust score for a wallet",
	Long: `Compute the trust score without the full approval listing.

The score starts at 100 and loses points for every high-risk approval,
down to a floor. 100 means nothing risky is outstanding.

Examples:
  warden score
  warden score 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045`,
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
			if err != nil {
				return err
			}
		} else {
			w, err := connectWallet(cmd.Context(), mgr, scoreWallet)
			if err != nil {
				return err
			}
			address = w.Address
		}

		spin := ui.NewSpinner("Scoring wallet...")
		spin.Start()
		res, err := buildScanner(c).Scan(cmd.Context(), address)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(ui.StyleTitle.Render("  " + ui.TruncateAddr(address) + " · " + c.DisplayName))
		fmt.Println("  " + ui.ScoreBar(res.Score))
		fmt.Println()

		high := approvals.HighRiskCount(res.Items)
		switch {
		case len(res.Items) == 0:
			fmt.Println(ui.Success("Clean wallet — no outstanding approvals."))
		case high == 0:
			fmt.Println(ui.Success(fmt.Sprintf("%d approval(s), none high-risk.", len(res.Items))))
		default:
			fmt.Println(ui.Warn(fmt.Sprintf("%d approval(s), %d high-risk.", len(res.Items), high)))
			fmt.Println(ui.Hint("See the full list with: warden scan"))
		}

		fmt.Println()
		fmt.Println(ui.Meta(shareLine(res.Score)))
		return nil
	},
}

// shareLine is the copy-pasteable summary printed under the score.
func shareLine(score int) string {
	return fmt.Sprintf("My approval trust score is %d/100 🛡️ — check yours with warden", score)
}

func init() {
	scoreCmd.Flags().StringVar(&scoreWallet, "wallet", "", "wallet name (default: connected wallet)")
}
