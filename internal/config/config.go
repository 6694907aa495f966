package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting of the backend.
type Config struct {
	Server ServerConfig
	Site   SiteConfig
	Store  StoreConfig
	Widget WidgetConfig
	AI     AIConfig
	Log    LogConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr, err := resolveAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := resolveAddr(c.Server.Port); err != nil {
		errs = append(errs, err)
	}

	u, err := url.Parse(c.Site.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("invalid SITE_URL value: %q", c.Site.URL))
	}
	if c.Site.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("SITE_TIMEOUT must be positive, got %s", c.Site.Timeout))
	}

	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}

	if c.Widget.MinDelay < 0 || c.Widget.MaxDelay < c.Widget.MinDelay {
		errs = append(errs, fmt.Errorf("invalid widget delay bounds [%s, %s)", c.Widget.MinDelay, c.Widget.MaxDelay))
	}

	return errors.Join(errs...)
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Addr is derived from Port.
	Addr string `env:"-"`
}

func resolveAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken as-is.
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// SiteConfig points at the institute website the bot learns from.
type SiteConfig struct {
	URL       string        `env:"SITE_URL" envDefault:"https://www.brainovision.in"`
	Timeout   time.Duration `env:"SITE_TIMEOUT" envDefault:"10s"`
	UserAgent string        `env:"SITE_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
}

// StoreConfig locates the trained knowledge database.
type StoreConfig struct {
	Path string `env:"DB_PATH" envDefault:"./data/assistant.db"`
}

// WidgetConfig bounds the pause before a bot reply is shown.
type WidgetConfig struct {
	MinDelay time.Duration `env:"WIDGET_MIN_DELAY" envDefault:"1s"`
	MaxDelay time.Duration `env:"WIDGET_MAX_DELAY" envDefault:"2s"`
}

// LogConfig selects the logger setup.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	File   string `env:"LOG_FILE"`
}

// AIConfig describes the optional language model.
type AIConfig struct {
	APIKey      string   `env:"ARK_API_KEY"`
	AccessKey   string   `env:"ARK_ACCESS_KEY"`
	SecretKey   string   `env:"ARK_SECRET_KEY"`
	Model       string   `env:"Model"`
	BaseURL     string   `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string   `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature *float64 `env:"ARK_TEMPERATURE"`
	TopP        *float64 `env:"ARK_TOP_P"`
	MaxTokens   *int     `env:"ARK_MAX_TOKENS"`
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model client from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}
