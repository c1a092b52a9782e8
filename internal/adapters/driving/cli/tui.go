package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/tui/messages"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ask"},
	Short:   "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface to ask questions about the
ingested laws and browse the passages behind each answer.

Controls:
  Enter    - Ask
  Tab      - Show / hide passages
  ↑/k, ↓/j - Navigate passages
  n        - New question
  Esc      - Back
  ?        - Toggle help
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// runProgram runs the TUI. Tests replace it to skip the terminal.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

func init() {
	tuiCmd.Flags().Bool("stats", false, "open on the collection overview")
	tuiCmd.Flags().String("strategy", "", "retrieval strategy: semantic or self_query")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("TUI panic: %v\n%s", r, debug.Stack())
		}
	}()
	showStats, _ := cmd.Flags().GetBool("stats")

	app, err := openApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	program, err := tui.NewApp(&tui.Ports{
		Query: app.Query,
		Stats: app.Stats,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program.WithContext(cmd.Context())
	if showStats {
		program.WithView(messages.ViewStats)
	}

	// Log lines would tear the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	if err := runProgram(program); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
