package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultAllowedOrigin = "https://chefmate.netlify.app"

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	GeminiAPIKey string
	EdamamAppID  string
	EdamamAppKey string

	// RenderAPIURL is the public URL of the deployment. It is carried for the
	// frontend build and not read by any handler.
	RenderAPIURL string

	AllowedOrigin string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port       string
	ConfigFile string

	Detection DetectionConfig
	Recipes   RecipesConfig
}

type DetectionConfig struct {
	Model           string        `yaml:"model"`
	Temperature     float32       `yaml:"temperature"`
	TopP            float32       `yaml:"top_p"`
	TopK            int32         `yaml:"top_k"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	TempDir         string        `yaml:"temp_dir"`
	Timeout         time.Duration `yaml:"timeout"`
}

type RecipesConfig struct {
	BaseURL              string        `yaml:"base_url"`
	PageSize             int           `yaml:"page_size"`
	Timeout              time.Duration `yaml:"timeout"`
	ReportProviderErrors bool          `yaml:"report_provider_errors"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		GeminiAPIKey:             os.Getenv("GEMINI_API_KEY"),
		EdamamAppID:              os.Getenv("EDAMAM_API_ID"),
		EdamamAppKey:             os.Getenv("EDAMAM_API_KEY"),
		RenderAPIURL:             os.Getenv("RENDER_API_URL"),
		AllowedOrigin:            os.Getenv("ALLOWED_ORIGIN"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
		ConfigFile:               os.Getenv("CONFIG_FILE"),
	}

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = "config.yaml"
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML(cfg.ConfigFile); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "chefmate-api"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = DefaultAllowedOrigin
	}
	cfg.AllowedOrigin = strings.TrimSuffix(cfg.AllowedOrigin, "/")

	cfg.SetDetectionDefaults()
	cfg.SetRecipesDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Detection DetectionConfig `yaml:"detection"`
		Recipes   RecipesConfig   `yaml:"recipes"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	d := yamlConfig.Detection
	if d.Model != "" {
		c.Detection.Model = d.Model
	}
	if d.Temperature != 0 {
		c.Detection.Temperature = d.Temperature
	}
	if d.TopP != 0 {
		c.Detection.TopP = d.TopP
	}
	if d.TopK != 0 {
		c.Detection.TopK = d.TopK
	}
	if d.MaxOutputTokens != 0 {
		c.Detection.MaxOutputTokens = d.MaxOutputTokens
	}
	if d.TempDir != "" {
		c.Detection.TempDir = d.TempDir
	}
	if d.Timeout != 0 {
		c.Detection.Timeout = d.Timeout
	}

	r := yamlConfig.Recipes
	if r.BaseURL != "" {
		c.Recipes.BaseURL = r.BaseURL
	}
	if r.PageSize != 0 {
		c.Recipes.PageSize = r.PageSize
	}
	if r.Timeout != 0 {
		c.Recipes.Timeout = r.Timeout
	}
	if r.ReportProviderErrors {
		c.Recipes.ReportProviderErrors = true
	}

	return nil
}

func (c *Config) SetDetectionDefaults() {
	if c.Detection.Model == "" {
		c.Detection.Model = "gemini-1.5-pro"
	}
	if c.Detection.Temperature == 0 {
		c.Detection.Temperature = 1
	}
	if c.Detection.TopP == 0 {
		c.Detection.TopP = 0.95
	}
	if c.Detection.TopK == 0 {
		c.Detection.TopK = 64
	}
	if c.Detection.MaxOutputTokens == 0 {
		c.Detection.MaxOutputTokens = 8192
	}
	if c.Detection.Timeout == 0 {
		c.Detection.Timeout = 2 * time.Minute
	}
}

func (c *Config) SetRecipesDefaults() {
	if c.Recipes.BaseURL == "" {
		c.Recipes.BaseURL = "https://api.edamam.com/search"
	}
	if c.Recipes.PageSize == 0 {
		c.Recipes.PageSize = 24
	}
	if c.Recipes.Timeout == 0 {
		c.Recipes.Timeout = 30 * time.Second
	}
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers
}

func (c *Config) validate() error {
	if c.Recipes.PageSize < 0 {
		return fmt.Errorf("recipes.page_size must be positive")
	}
	if c.Detection.Timeout < 0 || c.Recipes.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if !strings.HasPrefix(c.AllowedOrigin, "http://") && !strings.HasPrefix(c.AllowedOrigin, "https://") {
		return fmt.Errorf("ALLOWED_ORIGIN must be an http(s) origin, got %q", c.AllowedOrigin)
	}
	return nil
}
