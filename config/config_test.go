package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"llm": {"provider": "deepseek", "model": "deepseek-chat", "api_key": "sk", "base_url": "https://api.deepseek.com/v1", "timeout": "45s"},
		"search": {"provider": "brave", "api_key": "bk", "concurrency": 2},
		"render": {"outline": true}
	}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, "brave", cfg.Search.Provider)
	assert.Equal(t, 4, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Search.Concurrency)
	assert.Equal(t, "outputs", cfg.Render.OutputDir)
	assert.True(t, cfg.Render.Outline)
	assert.Equal(t, "slidegen", cfg.Metrics.Job)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"llm": {"provider": "openai"}, "search": {"provider": "tavily"}}`)
	t.Setenv("SLIDEGEN_LLM_API_KEY", "from-env")
	t.Setenv("SLIDEGEN_SEARCH_API_KEY", "tv-env")
	t.Setenv("SLIDEGEN_SEARCH_MAX_RESULTS", "6")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "tv-env", cfg.Search.APIKey)
	assert.Equal(t, 6, cfg.Search.MaxResults)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadConfigWithoutFileUsesEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SLIDEGEN_LLM_PROVIDER", "mock")
	t.Setenv("SLIDEGEN_SEARCH_API_KEY", "k")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOfflineNeedsNoKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SLIDEGEN_LLM_PROVIDER", "mock")
	t.Setenv("SLIDEGEN_SEARCH_PROVIDER", "mock")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Search.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			LLM:    LLMConfig{Provider: "openai", APIKey: "k", Temperature: 0.3},
			Search: SearchConfig{Provider: "tavily", APIKey: "k", MaxResults: 4, Concurrency: 4},
			Render: RenderConfig{OutputDir: "outputs"},
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(*Config){
		"unknown llm":        func(c *Config) { c.LLM.Provider = "claude" },
		"deepseek no base":   func(c *Config) { c.LLM.Provider = "deepseek" },
		"missing llm key":    func(c *Config) { c.LLM.APIKey = "" },
		"bad temperature":    func(c *Config) { c.LLM.Temperature = 3 },
		"unknown search":     func(c *Config) { c.Search.Provider = "bing" },
		"missing search key": func(c *Config) { c.Search.APIKey = "" },
		"bad depth":          func(c *Config) { c.Search.Depth = "deep" },
		"zero results":       func(c *Config) { c.Search.MaxResults = 0 },
		"empty output dir":   func(c *Config) { c.Render.OutputDir = " " },
	}
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}

	// mock llm 不放宽真实检索服务的 key 要求
	c := base()
	c.LLM = LLMConfig{Provider: "mock"}
	c.Search.APIKey = ""
	require.Error(t, c.Validate())
	c.Search.Provider = "mock"
	require.NoError(t, c.Validate())
}
