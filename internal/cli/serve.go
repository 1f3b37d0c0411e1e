package cli

import (
	"os/signal"
	"syscall"

	"pilltrack/internal/app"

	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API and the sweep scheduler",
		Long: `Levanta la API HTTP y el scheduler de sweeps (reminders, missed-doses, low-stock).

Sin DB_DSN usa stores in-memory. SIGINT/SIGTERM apagan ordenado.

Example:
  pilltrack serve --config ./pilltrack.yaml
  PORT=9000 NOTIFY_DRIVER=webhook NOTIFY_WEBHOOK_URL=http://push/notify pilltrack serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides PORT (e.g. :8080)")
	return cmd
}
