package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full CLI configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Search  SearchConfig  `mapstructure:"search"`
	Render  RenderConfig  `mapstructure:"render"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LLMConfig 选择生成模型；deepseek 走 OpenAI 兼容接口，需要 base_url。
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "openai", "gemini":
		if c.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %s", c.Provider)
		}
	case "deepseek":
		if c.APIKey == "" {
			return errors.New("llm.api_key is required for provider deepseek")
		}
		if c.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	case "mock":
	case "":
		return errors.New("llm.provider is required")
	default:
		return fmt.Errorf("llm provider %s not supported", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm.temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.MaxRetries < 0 {
		return errors.New("llm.max_retries cannot be negative")
	}
	return nil
}

type SearchConfig struct {
	Provider      string        `mapstructure:"provider"`
	APIKey        string        `mapstructure:"api_key"`
	Depth         string        `mapstructure:"depth"`
	MaxResults    int           `mapstructure:"max_results"`
	Concurrency   int           `mapstructure:"concurrency"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	EnrichEmpty   bool          `mapstructure:"enrich_empty"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	MaxFetchChars int           `mapstructure:"max_fetch_chars"`
}

func (c SearchConfig) Validate() error {
	switch c.Provider {
	case "tavily", "brave", "serper", "mock":
	default:
		return fmt.Errorf("search provider %q not supported", c.Provider)
	}
	if c.APIKey == "" && c.Provider != "mock" {
		return fmt.Errorf("search.api_key is required for provider %s", c.Provider)
	}
	if c.Depth != "" && c.Depth != "basic" && c.Depth != "advanced" {
		return fmt.Errorf("search.depth must be basic or advanced, got %q", c.Depth)
	}
	if c.MaxResults <= 0 {
		return errors.New("search.max_results must be > 0")
	}
	if c.Concurrency <= 0 {
		return errors.New("search.concurrency must be > 0")
	}
	if c.MaxRetries < 0 {
		return errors.New("search.max_retries cannot be negative")
	}
	return nil
}

type RenderConfig struct {
	OutputDir  string `mapstructure:"output_dir"`
	Outline    bool   `mapstructure:"outline"`
	ThemesFile string `mapstructure:"themes_file"`
}

// MetricsConfig 为空 pushgateway_url 时不推送。
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.max_retries", 2)

	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.depth", "basic")
	v.SetDefault("search.max_results", 4)
	v.SetDefault("search.concurrency", 4)
	v.SetDefault("search.rate_per_second", 5.0)
	v.SetDefault("search.timeout", 20*time.Second)
	v.SetDefault("search.max_retries", 2)
	v.SetDefault("search.enrich_empty", false)
	v.SetDefault("search.fetch_timeout", 15*time.Second)
	v.SetDefault("search.max_fetch_chars", 4000)

	v.SetDefault("render.output_dir", "outputs")
	v.SetDefault("render.outline", false)
	v.SetDefault("render.themes_file", "")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "slidegen")
}

// LoadConfig reads JSON config from path, or from config/config.json or
// ./config.json when path is empty. A missing file is fine in the latter
// case; SLIDEGEN_* env vars (e.g. SLIDEGEN_LLM_API_KEY) override any key.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SLIDEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks every section that a run depends on.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Render.OutputDir) == "" {
		return errors.New("render.output_dir is required")
	}
	return nil
}
