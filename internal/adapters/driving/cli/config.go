package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/config/file"
	"github.com/yurisalesc/poc-legal-llm/internal/config"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit the config file",
	Long: `Read and edit <data-dir>/config.toml.

Keys use dotted names, e.g. llm.provider or retriever.k. Values set here
are overridden by LEGAL_LLM_* environment variables and flags.`,
	Annotations: map[string]string{annotationNoConfig: "true"},
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Print a value from the config file",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a value in the config file",
	Long: `Set a value in the config file.

When the value of an API key is omitted it is read from the terminal
without echo.

Examples:
  legal-llm config set llm.provider anthropic
  legal-llm config set llm.api_key
  legal-llm config set retriever.strategy semantic`,
	Args:        cobra.RangeArgs(1, 2),
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:         "unset <key>",
	Short:       "Remove a value from the config file",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runConfigUnset,
}

var configListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List the values in the config file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runConfigList,
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List every settable key",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, k := range config.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configUnsetCmd, configListCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func openConfigStore(cmd *cobra.Command) (driven.ConfigStore, error) {
	store, err := file.NewConfigStore(dataDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	return store, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore(cmd)
	if err != nil {
		return err
	}
	value, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s is not set in %s", domain.ErrNotFound, args[0], store.Path())
	}
	cmd.Println(formatValue(args[0], value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case config.IsSecret(key):
		cmd.Printf("%s: ", key)
		raw = readSecret(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidInput, key)
	}

	value, err := config.ParseValue(key, raw)
	if err != nil {
		return err
	}

	store, err := openConfigStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("%s = %s\n", key, formatValue(key, value))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Unset(args[0]); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("%s unset\n", args[0])
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore(cmd)
	if err != nil {
		return err
	}
	keys := store.Keys()
	if len(keys) == 0 {
		cmd.Printf("No values set in %s\n", store.Path())
		return nil
	}
	for _, k := range keys {
		v, _ := store.Get(k)
		cmd.Printf("%s = %s\n", k, formatValue(k, v))
	}
	return nil
}

func formatValue(key string, v any) string {
	s := fmt.Sprint(v)
	if config.IsSecret(key) {
		return maskAPIKey(s)
	}
	return s
}

// readSecret reads a line without echo when r is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(r io.Reader) string {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
