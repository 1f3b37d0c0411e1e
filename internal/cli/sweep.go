package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pilltrack/internal/app"
	"pilltrack/internal/jobs"

	"github.com/spf13/cobra"
)

var sweepNames = []string{jobs.NameReminders, jobs.NameMissedDoses, jobs.NameLowStock}

func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <reminders|missed-doses|low-stock>",
		Short: "Run one sweep once and print its summary",
		Long: `Corre un sweep una sola vez, para dispararlo desde cron externo o un CronJob.

Example:
  pilltrack sweep reminders
  pilltrack sweep low-stock --format json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: sweepNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			// el proceso corre un solo sweep; el cron interno no aplica
			cfg.Scheduler.Enabled = false

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, runErr := a.RunSweep(cmd.Context(), args[0])
			if sum.Sweep != "" {
				if err := printSummary(cmd.OutOrStdout(), rootOpts.Format, sum); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	return cmd
}

type summaryOutput struct {
	Sweep      string            `json:"sweep"`
	DurationMS int64             `json:"duration_ms"`
	Succeeded  int               `json:"succeeded"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Items      []jobs.ItemResult `json:"items"`
}

func printSummary(w io.Writer, format string, s jobs.Summary) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaryOutput{
			Sweep:      s.Sweep,
			DurationMS: s.Duration().Milliseconds(),
			Succeeded:  s.Succeeded(),
			Skipped:    s.Skipped(),
			Failed:     s.Failed(),
			Items:      s.Items,
		})
	}

	fmt.Fprintf(w, "sweep=%s succeeded=%d skipped=%d failed=%d duration=%s\n",
		s.Sweep, s.Succeeded(), s.Skipped(), s.Failed(), s.Duration())
	for _, it := range s.Items {
		line := fmt.Sprintf("  %-8s %s", strings.ToLower(string(it.Outcome)), it.Key)
		if it.Reason != "" {
			line += "  " + it.Reason
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
