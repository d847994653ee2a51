package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSecretKey is used when SECRET_KEY is not set. Fine for local runs only.
const DefaultSecretKey = "your_secret_key"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`

	SecretKey           string        `mapstructure:"secret_key"`
	FormTokenTTLSeconds int64         `mapstructure:"form_token_ttl_seconds"`
	FormTokenTTL        time.Duration `mapstructure:"-"`

	NewsProvider       string        `mapstructure:"news_provider"`
	NewsAPIKey         string        `mapstructure:"news_api_key"`
	NewsAPIURL         string        `mapstructure:"news_api_url"`
	GoogleNewsURL      string        `mapstructure:"google_news_url"`
	NewsLanguage       string        `mapstructure:"news_language"`
	NewsCountry        string        `mapstructure:"news_country"`
	DefaultQuery       string        `mapstructure:"default_query"`
	MaxArticles        int           `mapstructure:"max_articles"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`

	ScrapeTimeoutSeconds int64         `mapstructure:"scrape_timeout_seconds"`
	ScrapeTimeout        time.Duration `mapstructure:"-"`
	ScrapeDelayMs        int           `mapstructure:"scrape_delay_ms"`
	ContentCharLimit     int           `mapstructure:"content_char_limit"`
	PlaceholderImage     string        `mapstructure:"placeholder_image"`

	Summarizer          string `mapstructure:"summarizer"`
	SummaryInputWords   int    `mapstructure:"summary_input_words"`
	ExtractiveSentences int    `mapstructure:"extractive_sentences"`
	LocalModelURL       string `mapstructure:"local_model_url"`
	LocalModelName      string `mapstructure:"local_model_name"`
	LocalModelAPIKey    string `mapstructure:"local_model_api_key"`
	HFAPIToken          string `mapstructure:"hf_api_token"`
	HFAPIURL            string `mapstructure:"hf_api_url"`
	HFModel             string `mapstructure:"hf_model"`
	PipelineMinWords    int    `mapstructure:"pipeline_min_words"`
	PipelineMaxLength   int    `mapstructure:"pipeline_max_length"`
	PipelineMinLength   int    `mapstructure:"pipeline_min_length"`

	PublishersFile        string        `mapstructure:"publishers_file"`
	PublishTimeoutSeconds int64         `mapstructure:"publish_timeout_seconds"`
	PublishTimeout        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Addr returns the listen address for the web server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-news-digest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 5000)

	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("form_token_ttl_seconds", int64((time.Hour)/time.Second))

	v.SetDefault("news_provider", "newsapi")
	v.SetDefault("news_api_key", "")
	v.SetDefault("news_api_url", "https://newsapi.org/v2/everything")
	v.SetDefault("google_news_url", "https://news.google.com/rss/search")
	v.SetDefault("news_language", "en")
	v.SetDefault("news_country", "US")
	v.SetDefault("default_query", "india")
	v.SetDefault("max_articles", 6)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("user_agent", "Mozilla/5.0 (compatible; samvad-news-digest/1.0)")

	v.SetDefault("scrape_timeout_seconds", 10)
	v.SetDefault("scrape_delay_ms", 0)
	v.SetDefault("content_char_limit", 0)
	v.SetDefault("placeholder_image", "https://via.placeholder.com/150")

	v.SetDefault("summarizer", "abstractive")
	v.SetDefault("summary_input_words", 512)
	v.SetDefault("extractive_sentences", 3)
	v.SetDefault("local_model_url", "http://localhost:8080/v1")
	v.SetDefault("local_model_name", "sshleifer/distilbart-cnn-6-6")
	v.SetDefault("local_model_api_key", "")
	v.SetDefault("hf_api_token", "")
	v.SetDefault("hf_api_url", "https://api-inference.huggingface.co/models")
	v.SetDefault("hf_model", "facebook/bart-large-cnn")
	v.SetDefault("pipeline_min_words", 50)
	v.SetDefault("pipeline_max_length", 130)
	v.SetDefault("pipeline_min_length", 30)

	v.SetDefault("publishers_file", "")
	v.SetDefault("publish_timeout_seconds", 10)

	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/digest.db")
	v.SetDefault("storage_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
}

func (c *Config) normalize() error {
	c.NewsProvider = strings.ToLower(strings.TrimSpace(c.NewsProvider))
	c.Summarizer = strings.ToLower(strings.TrimSpace(c.Summarizer))
	c.DefaultQuery = strings.TrimSpace(c.DefaultQuery)

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("invalid max_articles (must be positive)")
	}
	if c.SummaryInputWords <= 0 {
		return fmt.Errorf("invalid summary_input_words (must be positive)")
	}
	if c.ContentCharLimit < 0 {
		return fmt.Errorf("invalid content_char_limit (must be zero or positive)")
	}
	if c.DefaultQuery == "" {
		return fmt.Errorf("default_query must not be empty")
	}

	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if c.ScrapeTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid scrape_timeout_seconds (must be positive seconds)")
	}
	if c.FormTokenTTLSeconds <= 0 {
		return fmt.Errorf("invalid form_token_ttl_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second
	c.ScrapeTimeout = time.Duration(c.ScrapeTimeoutSeconds) * time.Second
	c.FormTokenTTL = time.Duration(c.FormTokenTTLSeconds) * time.Second

	if c.PublishTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid publish_timeout_seconds (must be positive seconds)")
	}
	c.PublishTimeout = time.Duration(c.PublishTimeoutSeconds) * time.Second

	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second

	return nil
}

// Redacted returns a copy safe for logging, with secrets masked.
func (c Config) Redacted() Config {
	c.SecretKey = mask(c.SecretKey)
	c.NewsAPIKey = mask(c.NewsAPIKey)
	c.HFAPIToken = mask(c.HFAPIToken)
	c.LocalModelAPIKey = mask(c.LocalModelAPIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
