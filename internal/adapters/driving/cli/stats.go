package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the collection holds",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "print JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	app, err := openApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.Stats.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if stats.Sources == nil {
		stats.Sources = []string{}
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	cmd.Printf("%s %s\n", heading("Collection:"), stats.Collection)
	cmd.Printf("%s %d\n", heading("Chunks:"), stats.Chunks)
	cmd.Printf("%s %d\n", heading("Documents:"), len(stats.Sources))
	for _, s := range stats.Sources {
		cmd.Printf("  - %s\n", s)
	}
	if len(stats.Collections) > 1 {
		cmd.Printf("%s %s\n", muted("Collections in this database:"), strings.Join(stats.Collections, ", "))
	}
	return nil
}
