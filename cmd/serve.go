package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/notify"
	"github.com/wardenlabs/warden/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the warden backend",
	Long: `Run the HTTP backend: the Farcaster notification webhook, the
quick-auth endpoint, the cron reminder trigger, and the mini-app
manifest.

Settings come from the environment (a .env file in the working
directory is loaded if present). With DATABASE_URL set, subscribers
are stored in Postgres; otherwise in memory, which only suits local
development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load() //nolint:errcheck

		sc := config.LoadServer()
		log := newServerLogger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := buildSubscriberStore(ctx, sc, log)
		if err != nil {
			return err
		}
		defer closeStore()

		reminder := notify.NewNotifier(store, sc.AppURL, sc.NotifyBulk, log)
		auth := server.NewVerifier(sc.AuthJWKSURL)
		srv := server.New(sc, store, reminder, auth, log)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()
		log.Info("serving", "addr", sc.Addr)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newServerLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildSubscriberStore picks Postgres when DATABASE_URL is set, the
// in-memory store otherwise.
func buildSubscriberStore(ctx context.Context, sc config.ServerConfig, log *slog.Logger) (notify.Store, func(), error) {
	if sc.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory subscriber store")
		return notify.NewMemStore(), func() {}, nil
	}

	pg, err := notify.NewPGStore(ctx, sc.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("migrating subscriber table: %w", err)
	}
	log.Info("subscriber store ready", "backend", "postgres")
	return pg, pg.Close, nil
}
