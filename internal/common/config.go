package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Header   HeaderConfig   `mapstructure:"header"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"` // "postgres" or "sqlite"
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr    string `mapstructure:"http_addr"`
	GRPCAddr    string `mapstructure:"grpc_addr"`
	Environment string `mapstructure:"environment"`
}

// LLMConfig lists providers in fallback order plus per-provider settings.
type LLMConfig struct {
	Providers      []string       `mapstructure:"providers"`
	OpenAI         ProviderConfig `mapstructure:"openai"`
	OpenRouter     ProviderConfig `mapstructure:"openrouter"`
	MaxPromptChars int            `mapstructure:"max_prompt_chars"`
}

// ProviderConfig configures one chat-completions backend.
type ProviderConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds orchestration knobs
type PipelineConfig struct {
	ItemDelay        time.Duration `mapstructure:"item_delay"`
	MinTextChars     int           `mapstructure:"min_text_chars"`
	BatchParallelism int           `mapstructure:"batch_parallelism"`
}

// CatalogConfig controls the equipment catalog snapshot
type CatalogConfig struct {
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

// HeaderConfig carries the deployment's known parties for header extraction
type HeaderConfig struct {
	DefaultSupplier entity.DefaultSupplier `mapstructure:"default_supplier"`
	AuthorityTaxIDs []string               `mapstructure:"authority_tax_ids"`
}

// QueueConfig sizes the background item-processing queue
type QueueConfig struct {
	Workers    int           `mapstructure:"workers"`
	Size       int           `mapstructure:"size"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

// IngestConfig enables the optional inbox watcher of the daemon
type IngestConfig struct {
	InboxDir    string        `mapstructure:"inbox_dir"`
	Debounce    time.Duration `mapstructure:"debounce"`
	InitialScan bool          `mapstructure:"initial_scan"`
	Kind        string        `mapstructure:"kind"`
}

// LoadConfig reads config.yaml (optional), PROCUREMENT_* environment variables and defaults.
// Extra search paths are consulted before the standard ones.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/procurement/")

	v.SetEnvPrefix("PROCUREMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.Providers = splitList(cfg.LLM.Providers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.max_conn_idle_time", "5m")
	v.SetDefault("database.dial_timeout", "3s")
	v.SetDefault("database.statement_timeout", "0s")

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.grpc_addr", ":9090")
	v.SetDefault("server.environment", "development")

	v.SetDefault("llm.providers", []string{"openai", "openrouter"})
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.temperature", 0.0)
	v.SetDefault("llm.openai.timeout", "90s")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.openrouter.temperature", 0.0)
	v.SetDefault("llm.openrouter.timeout", "90s")
	v.SetDefault("llm.max_prompt_chars", 30000)

	v.SetDefault("pipeline.item_delay", "1s")
	v.SetDefault("pipeline.min_text_chars", 100)
	v.SetDefault("pipeline.batch_parallelism", 2)

	v.SetDefault("catalog.snapshot_ttl", "5m")

	v.SetDefault("header.default_supplier.name", "")
	v.SetDefault("header.default_supplier.tax_id", "")
	v.SetDefault("header.default_supplier.markers", []string{})
	v.SetDefault("header.authority_tax_ids", []string{})

	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.size", 64)
	v.SetDefault("queue.job_timeout", "30m")

	v.SetDefault("ingest.inbox_dir", "")
	v.SetDefault("ingest.debounce", "2s")
	v.SetDefault("ingest.initial_scan", false)
	v.SetDefault("ingest.kind", "priceRegistration")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "database.dsn is required for postgres", ErrInvalidInput)
		}
	case "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("database.driver must be 'postgres' or 'sqlite', got %q", c.Database.Driver), ErrInvalidInput)
	}
	for _, p := range c.LLM.Providers {
		if p != "openai" && p != "openrouter" {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown llm provider %q", p), ErrInvalidInput)
		}
	}
	if s := c.Header.DefaultSupplier; (s.Name == "") != (s.TaxID == "") {
		return NewAppError("CONFIG_ERROR", "header.default_supplier needs both name and tax_id", ErrInvalidInput)
	}
	if c.Pipeline.ItemDelay < 0 {
		return NewAppError("CONFIG_ERROR", "pipeline.item_delay must not be negative", ErrInvalidInput)
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
