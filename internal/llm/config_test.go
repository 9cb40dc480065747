package llm

import (
	"strings"
	"testing"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg := configFromLookup(lookupFrom(map[string]string{
		"QUIZARENA_LLM_PROVIDER":       "openrouter",
		"QUIZARENA_OPENROUTER_API_KEY": "or-key",
		"QUIZARENA_OPENROUTER_MODEL":   "meta/llama",
		"QUIZARENA_OPENAI_BASE_URL":    "http://localhost:8080/v1",
		"QUIZARENA_GEMINI_MODEL":       "",
	}))

	if cfg.Provider != ProviderOpenRouter {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.OpenRouter.APIKey != "or-key" || cfg.OpenRouter.Model != "meta/llama" {
		t.Fatalf("openrouter = %+v", cfg.OpenRouter)
	}
	if cfg.OpenRouter.BaseURL != defaultOpenRouterBaseURL {
		t.Fatalf("openrouter base url = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:8080/v1" {
		t.Fatalf("openai base url = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.Gemini.Model != "gemini-flash" {
		t.Fatalf("empty variable should keep default, got %q", cfg.Gemini.Model)
	}
	if cfg.Model() != "meta/llama" {
		t.Fatalf("Model() = %q", cfg.Model())
	}
}

func TestDiscoverConfig(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		want   string
		wantOK bool
	}{
		{"none", map[string]string{}, "", false},
		{"anthropic only", map[string]string{"ANTHROPIC_API_KEY": "a"}, ProviderAnthropic, true},
		{"gemini wins", map[string]string{"ANTHROPIC_API_KEY": "a", "GEMINI_API_KEY": "g"}, ProviderGemini, true},
		{"openai before anthropic", map[string]string{"ANTHROPIC_API_KEY": "a", "OPENAI_API_KEY": "o"}, ProviderOpenAI, true},
		{"openrouter last", map[string]string{"OPENROUTER_API_KEY": "r"}, ProviderOpenRouter, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ok := discoverFromLookup(lookupFrom(tt.env))
			if ok != tt.wantOK || cfg.Provider != tt.want {
				t.Fatalf("got (%q, %v), want (%q, %v)", cfg.Provider, ok, tt.want, tt.wantOK)
			}
			if ok {
				if err := cfg.Validate(); err != nil {
					t.Fatalf("discovered config invalid: %v", err)
				}
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "QUIZARENA_ANTHROPIC_API_KEY") {
		t.Fatalf("err = %v", err)
	}

	cfg.Provider = ProviderMock
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock needs no key: %v", err)
	}

	cfg.Provider = "bard"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestProviders(t *testing.T) {
	cfg := DefaultConfig()
	for _, p := range Providers() {
		if p == ProviderMock {
			continue
		}
		if cfg.vendor(p) == nil {
			t.Errorf("provider %q has no config block", p)
		}
		if envName(p) == "" {
			t.Errorf("provider %q has no env name", p)
		}
	}
}
