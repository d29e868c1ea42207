package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealwise/mealwise/internal/config"
	"github.com/mealwise/mealwise/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View and filter the structured logs written by the serve daemon.

Examples:
  # Show the last 50 entries
  mealwise logs

  # Show everything a worker did to one record
  mealwise logs --record 4f8a... -n 0

  # Warnings and errors from the last hour
  mealwise logs --level warn --since 1h

  # Export filtered entries to CSV
  mealwise logs --level error --export errors.csv --format csv`,
	RunE: runLogs,
}

var (
	logsTail      int
	logsLevel     string
	logsComponent string
	logsWorker    string
	logsRecord    string
	logsSince     time.Duration
	logsGrep      string
	logsExport    string
	logsFormat    string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component (worker, service, events, ...)")
	logsCmd.Flags().StringVar(&logsWorker, "worker", "", "Filter by worker ID")
	logsCmd.Flags().StringVar(&logsRecord, "record", "", "Filter by record ID")
	logsCmd.Flags().DurationVar(&logsSince, "since", 0, "Show entries newer than this (e.g. 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter by message substring")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Write entries to this file instead of stdout")
	logsCmd.Flags().StringVar(&logsFormat, "format", "text", "Export format: json, text, or csv")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	entries, err := logging.AggregateLogs(cfg.Paths.ResolveDataDir())
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}

	filter := logging.LogFilter{
		Component:       logsComponent,
		WorkerID:        logsWorker,
		RecordID:        logsRecord,
		MessageContains: logsGrep,
	}
	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}
	if logsSince > 0 {
		filter.StartTime = time.Now().Add(-logsSince)
	}
	entries = logging.FilterLogs(entries, filter)

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	if logsExport != "" {
		if err := logging.ExportLogEntries(entries, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), logsExport)
		return nil
	}

	for _, e := range entries {
		fmt.Println(formatLogEntry(e))
	}
	return nil
}

// formatLogEntry renders one entry as a compact single line.
func formatLogEntry(e logging.LogEntry) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(e.Timestamp.Local().Format("15:04:05.000")))
	b.WriteString(" ")
	b.WriteString(renderLevel(e.Level))
	b.WriteString(" ")
	b.WriteString(e.Message)
	if e.Component != "" {
		b.WriteString(labelStyle.Render(" component=" + e.Component))
	}
	if e.WorkerID != "" {
		b.WriteString(labelStyle.Render(" worker=" + e.WorkerID))
	}
	if e.RecordID != "" {
		b.WriteString(labelStyle.Render(" record=" + e.RecordID))
	}
	for k, v := range e.Attrs {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %s=%v", k, v)))
	}
	return b.String()
}

func renderLevel(level string) string {
	switch level {
	case logging.LevelError:
		return failedStyle.Render(fmt.Sprintf("%-5s", level))
	case logging.LevelWarn:
		return pendingStyle.Render(fmt.Sprintf("%-5s", level))
	case logging.LevelDebug:
		return dimStyle.Render(fmt.Sprintf("%-5s", level))
	default:
		return fmt.Sprintf("%-5s", level)
	}
}
