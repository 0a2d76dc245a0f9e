package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level configuration for sales-analyzer.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run log. Driver "none" disables it.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// IngestConfig configures file reading limits and parsing.
type IngestConfig struct {
	MaxBytes   int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
	MaxRows    int    `yaml:"max_rows" mapstructure:"max_rows"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`
	SheetIndex int    `yaml:"sheet_index" mapstructure:"sheet_index"`
	SheetName  string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// FetchConfig configures remote source downloads.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// AnalysisConfig configures dashboard computation.
type AnalysisConfig struct {
	TopN        int `yaml:"top_n" mapstructure:"top_n"`
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "none")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("ingest.max_bytes", int64(50<<20))
	v.SetDefault("ingest.max_rows", 1_000_000)
	v.SetDefault("ingest.delimiter", "")
	v.SetDefault("ingest.encoding", "")
	v.SetDefault("ingest.sheet_index", 0)
	v.SetDefault("ingest.sheet_name", "")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "sales-analyzer/1.0")
	v.SetDefault("fetch.temp_dir", "")
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("analysis.concurrency", 4)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is one of "analyze",
// "serve" or "runs"; unknown modes get the common checks only.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "", "none":
		if mode == "runs" {
			problems = append(problems, "store.driver must be sqlite or postgres to inspect runs")
		}
	case "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres")
		}
	default:
		problems = append(problems, "store.driver must be none, sqlite or postgres")
	}

	if c.Ingest.MaxBytes <= 0 {
		problems = append(problems, "ingest.max_bytes must be positive")
	}
	if c.Ingest.MaxRows <= 0 {
		problems = append(problems, "ingest.max_rows must be positive")
	}
	if c.Ingest.SheetIndex < 0 {
		problems = append(problems, "ingest.sheet_index must not be negative")
	}
	if _, err := c.Ingest.DelimiterRune(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Analysis.TopN < 0 {
		problems = append(problems, "analysis.top_n must not be negative")
	}

	switch mode {
	case "analyze":
		if c.Analysis.Concurrency < 1 {
			problems = append(problems, "analysis.concurrency must be at least 1")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
		if c.Server.MaxUploadMB <= 0 {
			problems = append(problems, "server.max_upload_mb must be positive")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// DelimiterRune returns the configured field delimiter. Zero means
// auto-detect. Accepts a single character or one of the names "comma",
// "semicolon", "tab" and "pipe".
func (c IngestConfig) DelimiterRune() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "":
		return 0, nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "tab", `\t`:
		return '\t', nil
	case "pipe":
		return '|', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, eris.Errorf("ingest.delimiter %q is not a valid delimiter", c.Delimiter)
	}
	return r[0], nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
