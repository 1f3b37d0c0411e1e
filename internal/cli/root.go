package cli

import (
	"fmt"
	"os"
	"strings"

	"pilltrack/internal/config"
	"pilltrack/internal/platform/logger"

	"github.com/spf13/cobra"
)

// RootOptions son los flags globales.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	Format     string // salida de comandos: text | json
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pilltrack",
		Short: "PillTrack adherence engine",
		Long:  "Evalúa recordatorios, marca tomas vencidas y avisa stock bajo; expone la API de tomas y notificaciones.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", os.Getenv("CONFIG_FILE"), "YAML config file (env CONFIG_FILE)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "overrides LOG_LEVEL (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))

	return cmd
}

// load resuelve config + logger con los overrides de flags.
func (o *RootOptions) load(cmd *cobra.Command) (config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if lvl := strings.TrimSpace(o.LogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
		Output: cmd.ErrOrStderr(),
	})
	return cfg, log, nil
}
