// Package config loads pipeline settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Translation providers. DeepSeek is tried first, then OpenAI; with
	// neither key set the pipeline runs untranslated.
	DeepSeekAPIKey string
	OpenAIAPIKey   string
	AutoTranslate  bool

	// Persistence. Either a Postgres DSN or a Supabase-style REST endpoint
	// plus service key must be configured for posting.
	DatabaseDSN     string
	SupabaseURL     string
	SupabaseKey     string
	BotUserID       string
	DedupWindowDays int

	// Harvest settings
	SourcesConfigPath string
	MaxPerSource      int
	TotalMaxArticles  int
	MinContentLength  int
	QualityThreshold  float64
	SourceDelay       time.Duration
	ArticleDelay      time.Duration

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RunTimeout     time.Duration

	// Trigger surface
	CronSecret  string
	RunSchedule string
	Port        string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		AutoTranslate:     true,
		DedupWindowDays:   7,
		SourcesConfigPath: "configs/sources.yaml",
		MaxPerSource:      2,
		TotalMaxArticles:  8,
		MinContentLength:  200,
		QualityThreshold:  0.75,
		SourceDelay:       2 * time.Second,
		ArticleDelay:      1 * time.Second,
		RequestTimeout:    30 * time.Second,
		RunTimeout:        10 * time.Minute,
		Port:              "8080",
	}

	// Load from environment
	cfg.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.SupabaseKey = getEnvOrDefault("SUPABASE_SERVICE_ROLE_KEY", os.Getenv("SUPABASE_ANON_KEY"))
	cfg.BotUserID = os.Getenv("NEWS_BOT_USER_ID")
	cfg.CronSecret = os.Getenv("CRON_SECRET")
	cfg.RunSchedule = os.Getenv("RUN_SCHEDULE")

	if v := os.Getenv("AUTO_TRANSLATE"); v != "" {
		cfg.AutoTranslate = v != "false"
	}
	if v := os.Getenv("SOURCES_CONFIG_PATH"); v != "" {
		cfg.SourcesConfigPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	cfg.MaxPerSource = getEnvIntOrDefault("MAX_ARTICLES_PER_SOURCE", cfg.MaxPerSource)
	cfg.TotalMaxArticles = getEnvIntOrDefault("TOTAL_MAX_ARTICLES", cfg.TotalMaxArticles)
	cfg.MinContentLength = getEnvIntOrDefault("MIN_CONTENT_LENGTH", cfg.MinContentLength)
	cfg.DedupWindowDays = getEnvIntOrDefault("DEDUP_WINDOW_DAYS", cfg.DedupWindowDays)

	if v := os.Getenv("QUALITY_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val <= 1 {
			cfg.QualityThreshold = val
		}
	}
	if v := os.Getenv("SOURCE_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.SourceDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("ARTICLE_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.ArticleDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RUN_TIMEOUT_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RunTimeout = time.Duration(val) * time.Minute
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, nil
}

// ValidatePosting checks the configuration required to persist posts. Missing
// values here are the only fatal error class; everything else degrades.
func (c *Config) ValidatePosting() error {
	if c.BotUserID == "" {
		return fmt.Errorf("NEWS_BOT_USER_ID is required: it identifies the forum account bot posts are attributed to")
	}
	if c.DatabaseDSN == "" && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		return fmt.Errorf("persistence is not configured: set DATABASE_DSN or SUPABASE_URL with SUPABASE_SERVICE_ROLE_KEY")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
