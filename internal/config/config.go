// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Sources  []SourceConfig `mapstructure:"sources"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Export   ExportConfig   `mapstructure:"export"`
	Database DBConfig       `mapstructure:"database"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig describes one publisher catalog to harvest.
type SourceConfig struct {
	URL       string `mapstructure:"url"`
	StartPage int    `mapstructure:"start_page"`
	EndPage   int    `mapstructure:"end_page"`
}

// CrawlerConfig governs the fetch pipeline.
type CrawlerConfig struct {
	// ProcessPages sets the chunk size: each worker owns a range of
	// ProcessPages+1 contiguous pages.
	ProcessPages int               `mapstructure:"process_pages"`
	MaxWorkers   int               `mapstructure:"max_workers"`
	UserAgent    string            `mapstructure:"user_agent"`
	Headers      map[string]string `mapstructure:"headers"`
	// StrictMissingPages turns a 403/404 into a fatal run error
	// instead of a silent range truncation.
	StrictMissingPages bool          `mapstructure:"strict_missing_pages"`
	Timeout            time.Duration `mapstructure:"timeout"`
	// RPS paces requests per catalog host; zero disables pacing.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// HeadlessConfig configures the chromedp fallback fetcher.
type HeadlessConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxParallel int           `mapstructure:"max_parallel"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`
}

// ExportConfig selects the export sink and encoding.
type ExportConfig struct {
	Provider  string `mapstructure:"provider"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Encoding  string `mapstructure:"encoding"`
}

// DBConfig controls the optional Postgres load after export. An empty
// DSN skips loading entirely.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PublishConfig selects the run-event publisher.
type PublishConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bookcat")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.process_pages", 25)
	v.SetDefault("crawler.max_workers", 0)
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 6.1; Win64; x64)")
	v.SetDefault("crawler.strict_missing_pages", false)
	v.SetDefault("crawler.timeout", "15s")
	v.SetDefault("crawler.rps", 0)
	v.SetDefault("crawler.burst", 1)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout", "45s")
	v.SetDefault("export.provider", "local")
	v.SetDefault("export.dir", "data/export")
	v.SetDefault("export.encoding", "utf-8")
	v.SetDefault("publish.provider", "noop")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	for _, src := range c.Sources {
		if src.URL == "" {
			return fmt.Errorf("sources: url must not be empty")
		}
		if src.StartPage < 0 || src.EndPage < 0 || src.StartPage > src.EndPage {
			return fmt.Errorf("sources: invalid page range [%d, %d] for %s", src.StartPage, src.EndPage, src.URL)
		}
	}
	if c.Crawler.ProcessPages < 0 {
		return fmt.Errorf("crawler.process_pages must be >= 0")
	}
	if c.Crawler.MaxWorkers < 0 {
		return fmt.Errorf("crawler.max_workers must be >= 0")
	}
	if c.Crawler.RPS < 0 {
		return fmt.Errorf("crawler.rps must be >= 0")
	}
	switch c.Export.Provider {
	case "local", "memory", "gcs":
	default:
		return fmt.Errorf("unknown export provider: %s", c.Export.Provider)
	}
	if c.Export.Provider == "gcs" && c.Export.GCSBucket == "" {
		return fmt.Errorf("export.gcs_bucket must be set when export.provider is 'gcs'")
	}
	switch c.Export.Encoding {
	case "utf-8", "windows-1251":
	default:
		return fmt.Errorf("unknown export encoding: %s", c.Export.Encoding)
	}
	switch c.Publish.Provider {
	case "noop", "pubsub":
	default:
		return fmt.Errorf("unknown publish provider: %s", c.Publish.Provider)
	}
	if c.Publish.Provider == "pubsub" && (c.Publish.ProjectID == "" || c.Publish.Topic == "") {
		return fmt.Errorf("publish.project_id and publish.topic must be set when publish.provider is 'pubsub'")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}
