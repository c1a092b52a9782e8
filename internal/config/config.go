// Package config loads application settings from defaults, the TOML config
// file, a .env file, environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// EnvPrefix prefixes environment overrides, e.g. LEGAL_LLM_RETRIEVER_K.
const EnvPrefix = "LEGAL_LLM"

// ConfigFile is the config file name inside the data directory.
const ConfigFile = "config.toml"

// Provider API key variables, honoured when no key is configured.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderGemini:    "GOOGLE_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Config is the full application configuration.
type Config struct {
	DataDir    string          `mapstructure:"data_dir" validate:"required"`
	Collection string          `mapstructure:"collection" validate:"required"`
	LogFormat  string          `mapstructure:"log_format" validate:"oneof=console json"`
	Verbose    bool            `mapstructure:"verbose"`
	Embedding  EmbeddingConfig `mapstructure:"embedding"`
	LLM        LLMConfig       `mapstructure:"llm"`
	Chunker    ChunkerConfig   `mapstructure:"chunker"`
	Retriever  RetrieverConfig `mapstructure:"retriever"`
	Server     ServerConfig    `mapstructure:"server"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider          string  `mapstructure:"provider" validate:"oneof=gemini openai ollama"`
	Model             string  `mapstructure:"model"`
	BaseURL           string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	Dimensions        int     `mapstructure:"dimensions" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

// LLMConfig selects the language model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=gemini openai ollama anthropic"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey   string `mapstructure:"api_key"`
}

// ChunkerConfig controls document splitting.
type ChunkerConfig struct {
	Size    int `mapstructure:"size" validate:"gt=0"`
	Overlap int `mapstructure:"overlap" validate:"gte=0,ltfield=Size"`
}

// RetrieverConfig controls passage retrieval.
type RetrieverConfig struct {
	Strategy  string  `mapstructure:"strategy" validate:"oneof=semantic self_query"`
	K         int     `mapstructure:"k" validate:"gt=0"`
	FetchK    int     `mapstructure:"fetch_k" validate:"gtefield=K"`
	MMR       bool    `mapstructure:"mmr"`
	MMRLambda float64 `mapstructure:"mmr_lambda" validate:"gte=0,lte=1"`
}

// ServerConfig controls the HTTP API and its ingestion workers.
type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required"`
	UploadDir string `mapstructure:"upload_dir" validate:"required"`
	Workers   int    `mapstructure:"workers" validate:"gt=0"`
	QueueSize int    `mapstructure:"queue_size" validate:"gt=0"`
	KeepFiles bool   `mapstructure:"keep_files"`
}

// Options tune a Load call.
type Options struct {
	// ConfigFile overrides <data_dir>/config.toml.
	ConfigFile string

	// EnvFiles are dotenv files to load; missing files are ignored.
	// Defaults to ".env" in the working directory.
	EnvFiles []string

	// Flags maps config keys to command-line flags. A flag only overrides
	// the key when it was set explicitly.
	Flags map[string]*pflag.Flag
}

// DefaultDataDir returns ~/.legal-llm, or ".legal-llm" if the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".legal-llm"
	}
	return filepath.Join(home, ".legal-llm")
}

func setDefaults(v *viper.Viper) {
	d := domain.DefaultAppSettings()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("collection", d.Collection)
	v.SetDefault("log_format", "console")
	v.SetDefault("verbose", false)

	v.SetDefault("embedding.provider", string(d.Embedding.Provider))
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 0)
	v.SetDefault("embedding.requests_per_second", d.Embedding.RequestsPerSecond)

	v.SetDefault("llm.provider", string(d.LLM.Provider))
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")

	v.SetDefault("chunker.size", d.Chunker.Size)
	v.SetDefault("chunker.overlap", d.Chunker.Overlap)

	v.SetDefault("retriever.strategy", string(d.Retriever.Strategy))
	v.SetDefault("retriever.k", d.Retriever.K)
	v.SetDefault("retriever.fetch_k", d.Retriever.FetchK)
	v.SetDefault("retriever.mmr", d.Retriever.MMR)
	v.SetDefault("retriever.mmr_lambda", d.Retriever.MMRLambda)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.upload_dir", "temp_uploads")
	v.SetDefault("server.workers", 2)
	v.SetDefault("server.queue_size", 100)
	v.SetDefault("server.keep_files", false)
}

// Load builds the configuration and validates it.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	path := opts.ConfigFile
	if path == "" {
		path = filepath.Join(v.GetString("data_dir"), ConfigFile)
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if opts.ConfigFile != "" {
		return nil, fmt.Errorf("config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.applyProviderKeys()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyProviderKeys fills empty API keys from the providers' own variables.
func (c *Config) applyProviderKeys() {
	if c.Embedding.APIKey == "" {
		if env, ok := providerKeyEnv[domain.AIProvider(c.Embedding.Provider)]; ok {
			c.Embedding.APIKey = os.Getenv(env)
		}
	}
	if c.LLM.APIKey == "" {
		if env, ok := providerKeyEnv[domain.AIProvider(c.LLM.Provider)]; ok {
			c.LLM.APIKey = os.Getenv(env)
		}
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// Settings converts the configuration into domain settings.
func (c *Config) Settings() domain.AppSettings {
	return domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(c.Embedding.Provider),
			Model:             c.Embedding.Model,
			BaseURL:           c.Embedding.BaseURL,
			APIKey:            c.Embedding.APIKey,
			Dimensions:        c.Embedding.Dimensions,
			RequestsPerSecond: c.Embedding.RequestsPerSecond,
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProvider(c.LLM.Provider),
			Model:    c.LLM.Model,
			BaseURL:  c.LLM.BaseURL,
			APIKey:   c.LLM.APIKey,
		},
		Chunker: domain.ChunkerSettings{
			Size:    c.Chunker.Size,
			Overlap: c.Chunker.Overlap,
		},
		Retriever: domain.RetrieverSettings{
			Strategy:  domain.RetrievalStrategy(c.Retriever.Strategy),
			K:         c.Retriever.K,
			FetchK:    c.Retriever.FetchK,
			MMR:       c.Retriever.MMR,
			MMRLambda: c.Retriever.MMRLambda,
		},
		Collection: c.Collection,
	}
}

// VectorDir is where the SQLite vector store lives.
func (c *Config) VectorDir() string { return filepath.Join(c.DataDir, "data") }

// TaskDir is where the task status store lives.
func (c *Config) TaskDir() string { return filepath.Join(c.DataDir, "tasks") }

// PromptDir is where editable prompt templates live.
func (c *Config) PromptDir() string { return filepath.Join(c.DataDir, "prompts") }
