// Package cli provides the legal-llm command-line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yurisalesc/poc-legal-llm/internal/config"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationNoConfig marks commands that run without loading the configuration.
const annotationNoConfig = "legal-llm/no-config"

// flagKeys maps configuration keys to the flags that may override them.
// Only flags defined on the running command are bound.
var flagKeys = map[string]string{
	"data_dir":           "data-dir",
	"collection":         "collection",
	"verbose":            "verbose",
	"log_format":         "log-format",
	"retriever.strategy": "strategy",
	"retriever.k":        "k",
	"server.addr":        "addr",
	"server.workers":     "workers",
	"server.upload_dir":  "upload-dir",
}

// cfg is the configuration loaded for the running command.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "legal-llm",
	Short: "Question answering over Brazilian legislation",
	Long: `legal-llm ingests PDFs of Brazilian laws into a local vector store and
answers questions about them with a language model, citing the source files.

Settings come from ~/.legal-llm/config.toml, a .env file, LEGAL_LLM_*
environment variables and flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default <data-dir>/config.toml)")
	pf.String("env-file", ".env", "dotenv file with provider keys")
	pf.String("data-dir", "", "data directory (default ~/.legal-llm)")
	pf.String("collection", "", "vector store collection")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("log-format", "", "log format: console or json")
	pf.Bool("ephemeral", false, "keep chunks and tasks in memory only")
}

// SetVersion sets the version printed by 'legal-llm version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	if cmd.Annotations[annotationNoConfig] != "" {
		return nil
	}

	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	envFiles := []string{}
	if envFile != "" {
		envFiles = []string{envFile}
	}

	loaded, err := config.Load(config.Options{
		ConfigFile: configFile,
		EnvFiles:   envFiles,
		Flags:      flags,
	})
	if err != nil {
		return err
	}
	cfg = loaded

	logger.SetVerbose(cfg.Verbose)
	logger.SetJSON(cfg.LogFormat == "json")
	logger.Debug("Data directory: %s", cfg.DataDir)
	return nil
}

// dataDir resolves the data directory without loading the full
// configuration, for commands that must work even when it is invalid.
func dataDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		return dir
	}
	if dir := os.Getenv(config.EnvPrefix + "_DATA_DIR"); dir != "" {
		return dir
	}
	return config.DefaultDataDir()
}
