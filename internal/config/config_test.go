package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// isolate points the loader at an empty data dir and clears provider keys.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEGAL_LLM_DATA_DIR", dir)
	for _, env := range providerKeyEnv {
		t.Setenv(env, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, domain.DefaultCollection, cfg.Collection)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
	assert.Equal(t, 1000, cfg.Chunker.Size)
	assert.Equal(t, 150, cfg.Chunker.Overlap)
	assert.Equal(t, "self_query", cfg.Retriever.Strategy)
	assert.Equal(t, 8, cfg.Retriever.K)
	assert.Equal(t, 20, cfg.Retriever.FetchK)
	assert.False(t, cfg.Retriever.MMR)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Server.Workers)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.VectorDir())
}

func TestLoad_ConfigFileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	content := `
collection = "decretos"

[retriever]
strategy = "semantic"
k = 4
fetch_k = 12

[llm]
provider = "ollama"
model = "llama3.2"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))
	t.Setenv("LEGAL_LLM_RETRIEVER_K", "6")

	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "decretos", cfg.Collection)
	assert.Equal(t, "semantic", cfg.Retriever.Strategy)
	assert.Equal(t, 6, cfg.Retriever.K, "environment beats the file")
	assert.Equal(t, 12, cfg.Retriever.FetchK)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
}

func TestLoad_DotEnvProvidesAPIKeys(t *testing.T) {
	isolate(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GOOGLE_API_KEY=from-dotenv\n"), 0600))
	// godotenv never overrides variables that are already set.
	require.NoError(t, os.Unsetenv("GOOGLE_API_KEY"))

	cfg, err := Load(Options{EnvFiles: []string{envFile}})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Embedding.APIKey)
	assert.Equal(t, "from-dotenv", cfg.LLM.APIKey)
	assert.True(t, cfg.Settings().LLM.IsConfigured())
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "provider-key")
	t.Setenv("LEGAL_LLM_LLM_PROVIDER", "openai")
	t.Setenv("LEGAL_LLM_LLM_API_KEY", "explicit")

	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.LLM.APIKey)
}

func TestLoad_Flags(t *testing.T) {
	isolate(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("strategy", "semantic", "")
	fs.Int("k", 3, "")
	require.NoError(t, fs.Parse([]string{"--k", "5"}))

	cfg, err := Load(Options{
		EnvFiles: []string{},
		Flags: map[string]*pflag.Flag{
			"retriever.strategy": fs.Lookup("strategy"),
			"retriever.k":        fs.Lookup("k"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retriever.K)
	assert.Equal(t, "self_query", cfg.Retriever.Strategy, "unset flag keeps the default")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(Options{EnvFiles: []string{}, ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	loaded, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "cohere" }},
		{"anthropic embeddings", func(c *Config) { c.Embedding.Provider = "anthropic" }},
		{"unknown strategy", func(c *Config) { c.Retriever.Strategy = "hybrid" }},
		{"zero k", func(c *Config) { c.Retriever.K = 0 }},
		{"fetch_k below k", func(c *Config) { c.Retriever.FetchK = c.Retriever.K - 1 }},
		{"lambda above one", func(c *Config) { c.Retriever.MMRLambda = 1.5 }},
		{"overlap not below size", func(c *Config) { c.Chunker.Overlap = c.Chunker.Size }},
		{"bad base url", func(c *Config) { c.LLM.BaseURL = "not a url" }},
		{"no workers", func(c *Config) { c.Server.Workers = 0 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *loaded
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettings(t *testing.T) {
	isolate(t)
	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)

	s := cfg.Settings()
	assert.Equal(t, domain.StrategySelfQuery, s.Retriever.Strategy)
	assert.Equal(t, domain.AIProviderGemini, s.Embedding.Provider)
	assert.Equal(t, domain.DefaultCollection, s.Collection)
	assert.Equal(t, 5.0, s.Embedding.RequestsPerSecond)
}
