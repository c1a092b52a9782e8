package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/ai"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured AI providers are reachable",
	Long: `Create the configured embedding and language model clients and ping them.

The embedding provider is required for ingestion and retrieval. The language
model is required for answers and self-query retrieval.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// newChecker creates the provider checker. Tests replace it.
var newChecker = func() driven.ProviderChecker {
	return ai.NewChecker()
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	settings := cfg.Settings()
	checker := newChecker()

	failed := 0
	report := func(kind, provider, model string, err error) {
		label := fmt.Sprintf("%-10s %s (%s)", kind, provider, model)
		if err != nil {
			failed++
			cmd.Printf("%s %s: %v\n", failure("✗"), label, err)
			return
		}
		cmd.Printf("%s %s\n", success("✓"), label)
	}

	report("embedding", string(settings.Embedding.Provider), settings.Embedding.Model,
		checker.CheckEmbedding(ctx, &settings.Embedding))
	report("llm", string(settings.LLM.Provider), settings.LLM.Model,
		checker.CheckLLM(ctx, &settings.LLM))

	if failed > 0 {
		return fmt.Errorf("%d provider(s) unreachable", failed)
	}
	return nil
}
