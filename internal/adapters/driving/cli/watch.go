package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest PDFs as they appear in a directory",
	Long: `Watch a directory and ingest every PDF written to it once the file stops
changing. Files are never deleted. A file rewritten with new content is
ingested again.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("existing", false, "also ingest the PDFs already in the directory")
	watchCmd.Flags().Duration("settle", watcher.DefaultSettle, "quiet period before a changed file is ingested")
	watchCmd.Flags().Int("workers", 0, "concurrent ingestion workers (default 2)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	existing, _ := cmd.Flags().GetBool("existing")
	settle, _ := cmd.Flags().GetDuration("settle")

	app, err := openApp(cmd, appOptions{Tasks: true, KeepFiles: true})
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Tasks == nil {
		return fmt.Errorf("task service not available")
	}
	if err := app.Tasks.Start(ctx); err != nil {
		return fmt.Errorf("starting workers: %w", err)
	}
	defer app.Tasks.Stop()

	opts := []watcher.Option{watcher.WithSettle(settle)}
	if existing {
		opts = append(opts, watcher.WithExisting())
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return watcher.New(args[0], app.Tasks, opts...).Run(ctx)
}
