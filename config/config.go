package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and configures the SQL backend.
type StoreConfig struct {
	Driver   string         `yaml:"driver" mapstructure:"driver"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite" mapstructure:"sqlite"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       string `yaml:"db" mapstructure:"db"`
	SSLMode  string `yaml:"sslmode" mapstructure:"sslmode"`
}

// SQLiteConfig holds the SQLite database path.
type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ScrapeConfig tunes the portal scraper.
type ScrapeConfig struct {
	Market          string `yaml:"market" mapstructure:"market"`
	Pages           int    `yaml:"pages" mapstructure:"pages"`
	ListingsPerPage int    `yaml:"listings_per_page" mapstructure:"listings_per_page"`
	MaxConcurrency  int    `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RateLimitMs     int    `yaml:"rate_limit_ms" mapstructure:"rate_limit_ms"`
	MaxRetries      int    `yaml:"max_retries" mapstructure:"max_retries"`
	ChromeBin       string `yaml:"chrome_bin" mapstructure:"chrome_bin"`
}

// AnalysisConfig tunes batch analysis.
type AnalysisConfig struct {
	Workers       int    `yaml:"workers" mapstructure:"workers"`
	BenchmarkFile string `yaml:"benchmark_file" mapstructure:"benchmark_file"`
	DefaultMarket string `yaml:"default_market" mapstructure:"default_market"`
	TopN          int    `yaml:"top_n" mapstructure:"top_n"`
}

// RetrievalConfig tunes the retrieval index.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// AnthropicConfig holds completion service settings.
type AnthropicConfig struct {
	Key         string        `yaml:"key" mapstructure:"key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens   int64         `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retries     int           `yaml:"retries" mapstructure:"retries"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// OutputConfig holds output file locations.
type OutputConfig struct {
	CSVPath     string `yaml:"csv_path" mapstructure:"csv_path"`
	ReportPath  string `yaml:"report_path" mapstructure:"report_path"`
	ResultsPath string `yaml:"results_path" mapstructure:"results_path"`
	RawPath     string `yaml:"raw_path" mapstructure:"raw_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads .env (if present), then config.yaml (if present), then
// PROPERTY_-prefixed environment variables, over built-in defaults.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PROPERTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("anthropic.key", "PROPERTY_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind anthropic key")
	}

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "property")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.db", "property_db")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("store.sqlite.path", "./data/opportunities.db")
	v.SetDefault("scrape.market", "dubai")
	v.SetDefault("scrape.pages", 2)
	v.SetDefault("scrape.listings_per_page", 24)
	v.SetDefault("scrape.max_concurrency", 3)
	v.SetDefault("scrape.rate_limit_ms", 2000)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.chrome_bin", "")
	v.SetDefault("analysis.workers", 4)
	v.SetDefault("analysis.benchmark_file", "")
	v.SetDefault("analysis.default_market", "dubai")
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("anthropic.timeout", 30*time.Second)
	v.SetDefault("anthropic.retries", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("output.csv_path", "./output/opportunities.csv")
	v.SetDefault("output.report_path", "./reports/investment_report.txt")
	v.SetDefault("output.results_path", "./reports/investment_analysis.json")
	v.SetDefault("output.raw_path", "./output/raw_listings.csv")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	p := c.Store.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q must be postgres or sqlite", c.Store.Driver))
	}
	if c.Store.Driver == "sqlite" && c.Store.SQLite.Path == "" {
		problems = append(problems, "store.sqlite.path is required")
	}
	if c.Scrape.Pages < 1 {
		problems = append(problems, "scrape.pages must be at least 1")
	}
	if c.Scrape.ListingsPerPage < 1 {
		problems = append(problems, "scrape.listings_per_page must be at least 1")
	}
	if c.Scrape.MaxConcurrency < 1 {
		problems = append(problems, "scrape.max_concurrency must be at least 1")
	}
	if c.Scrape.RateLimitMs < 0 {
		problems = append(problems, "scrape.rate_limit_ms must not be negative")
	}
	if c.Analysis.Workers < 1 {
		problems = append(problems, "analysis.workers must be at least 1")
	}
	if c.Analysis.TopN < 1 {
		problems = append(problems, "analysis.top_n must be at least 1")
	}
	if c.Retrieval.TopK < 1 {
		problems = append(problems, "retrieval.top_k must be at least 1")
	}
	if c.Anthropic.MaxTokens < 1 {
		problems = append(problems, "anthropic.max_tokens must be at least 1")
	}
	if c.Anthropic.Timeout <= 0 {
		problems = append(problems, "anthropic.timeout must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger builds the global zap logger from cfg.
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
