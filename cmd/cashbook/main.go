package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cashbook/internal/app"
	"github.com/MrJamesThe3rd/cashbook/internal/config"
)

// cli carries the services shared by the subcommands. They are built lazily
// in PersistentPreRunE so --help works without a database.
type cli struct {
	app *app.App
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "cashbook",
		Short: "Import bank statements and keep a double-entry cash book",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.connect(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}

			return c.app.Close()
		},
	}

	rootCmd.AddCommand(
		c.importCmd(),
		c.balanceCmd(),
		c.cleanupCmd(),
		c.rulesCmd(),
		c.exportCmd(),
	)

	// Interrupting an import stops it between rows; finished rows stay booked.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func (c *cli) connect(ctx context.Context) error {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	c.app = a

	return nil
}
