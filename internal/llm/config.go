package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderMock}
}

type Config struct {
	Provider string

	Anthropic  VendorConfig
	OpenAI     VendorConfig
	Gemini     VendorConfig
	OpenRouter VendorConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// VendorConfig holds the credentials and model for one vendor. BaseURL is
// honoured by the OpenAI-compatible vendors only.
type VendorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  VendorConfig{Model: "claude-haiku"},
		OpenAI:     VendorConfig{Model: "gpt-4o-mini"},
		Gemini:     VendorConfig{Model: "gemini-flash"},
		OpenRouter: VendorConfig{Model: "google/gemini-2.5-flash", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

const envPrefix = "QUIZARENA_"

// vendor returns the settings block for a provider name.
func (c *Config) vendor(name string) *VendorConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// ConfigFromEnv applies QUIZARENA_LLM_PROVIDER and the per-vendor
// QUIZARENA_<VENDOR>_API_KEY, _MODEL and _BASE_URL variables to the
// defaults.
func ConfigFromEnv() Config {
	return configFromLookup(os.LookupEnv)
}

func configFromLookup(lookup func(string) (string, bool)) Config {
	cfg := DefaultConfig()
	if p, ok := lookup(envPrefix + "LLM_PROVIDER"); ok && p != "" {
		cfg.Provider = p
	}
	for _, name := range []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter} {
		v := cfg.vendor(name)
		prefix := envPrefix + envName(name)
		if s, ok := lookup(prefix + "_API_KEY"); ok && s != "" {
			v.APIKey = s
		}
		if s, ok := lookup(prefix + "_MODEL"); ok && s != "" {
			v.Model = s
		}
		if s, ok := lookup(prefix + "_BASE_URL"); ok && s != "" {
			v.BaseURL = s
		}
	}
	return cfg
}

// DiscoverConfig looks for the vendors' standard key variables
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY,
// in that order) and selects the first one present.
func DiscoverConfig() (Config, bool) {
	return discoverFromLookup(os.LookupEnv)
}

func discoverFromLookup(lookup func(string) (string, bool)) (Config, bool) {
	cfg := DefaultConfig()
	for _, name := range []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter} {
		if k, ok := lookup(envName(name) + "_API_KEY"); ok && k != "" {
			cfg.Provider = name
			cfg.vendor(name).APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	v := c.vendor(c.Provider)
	if v == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if v.APIKey == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider", envPrefix, envName(c.Provider), c.Provider)
	}
	return nil
}

// Model returns the configured model of the selected provider.
func (c Config) Model() string {
	if c.Provider == ProviderMock {
		return ProviderMock
	}
	if v := c.vendor(c.Provider); v != nil {
		return v.Model
	}
	return ""
}

func envName(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC"
	case ProviderOpenAI:
		return "OPENAI"
	case ProviderGemini:
		return "GEMINI"
	case ProviderOpenRouter:
		return "OPENROUTER"
	}
	return ""
}

// SetModel overrides the model of the selected provider. Unknown
// providers are left untouched.
func (c *Config) SetModel(model string) {
	if v := c.vendor(c.Provider); v != nil && model != "" {
		v.Model = model
	}
}
