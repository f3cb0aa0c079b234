package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/notify"
	"github.com/wardenlabs/warden/internal/ui"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send one reminder notification round",
	Long: `Push one "time to check your approvals" notification to every
subscriber, the same round the /api/cron/remind endpoint runs. Useful
for one-off sends and for testing the notification pipeline without a
cron scheduler.

Uses the same environment as ` + "`warden serve`" + ` (DATABASE_URL,
WARDEN_APP_URL, WARDEN_NOTIFY_BULK).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load() //nolint:errcheck

		sc := config.LoadServer()
		log := newServerLogger()

		store, closeStore, err := buildSubscriberStore(cmd.Context(), sc, log)
		if err != nil {
			return err
		}
		defer closeStore()

		out, err := notify.NewNotifier(store, sc.AppURL, sc.NotifyBulk, log).Remind(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Reminder Round", [][2]string{
			{"Sent", fmt.Sprintf("%d", out.Sent)},
			{"Failed", fmt.Sprintf("%d", out.Failed)},
			{"Skipped", fmt.Sprintf("%d", out.Skipped)},
		}))
		return nil
	},
}
