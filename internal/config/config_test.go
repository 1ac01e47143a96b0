package config

import (
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue float64
		envValue     string
		shouldSet    bool
		want         float64
	}{
		{
			name:         "parses valid float",
			key:          "TEST_FLOAT",
			defaultValue: 0,
			envValue:     "0.25",
			shouldSet:    true,
			want:         0.25,
		},
		{
			name:         "returns default when unset",
			key:          "TEST_FLOAT_MISSING",
			defaultValue: 1.5,
			envValue:     "",
			shouldSet:    false,
			want:         1.5,
		},
		{
			name:         "returns default when unparseable",
			key:          "TEST_FLOAT_BAD",
			defaultValue: 2,
			envValue:     "not-a-number",
			shouldSet:    true,
			want:         2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsFloat(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	// Blank out provider-relevant variables so defaults are exercised; empty
	// values read the same as unset throughout Load.
	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, key := range []string{
			"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GOOGLEAI_API_KEY",
			"VECTOR_STORE", "SEARCH_TOP_K", "SEARCH_MIN_SCORE", "EMBEDDING_DIMENSIONS",
		} {
			t.Setenv(key, "")
		}
	}

	t.Run("openai provider requires API key without base URL", func(t *testing.T) {
		clearEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for missing OPENAI_API_KEY")
		}
	})

	t.Run("openai provider accepts base URL without key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Provider != ProviderOpenAI {
			t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderOpenAI)
		}
		if cfg.SearchTopK != 5 {
			t.Errorf("SearchTopK = %d, want 5", cfg.SearchTopK)
		}
		if cfg.SearchMinScore != 0 {
			t.Errorf("SearchMinScore = %v, want 0", cfg.SearchMinScore)
		}
	})

	t.Run("googleai provider requires its key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "googleai")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for missing GOOGLEAI_API_KEY")
		}
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "anthropic")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for unknown provider")
		}
	})

	t.Run("unknown vector store rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("VECTOR_STORE", "chroma")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for unknown vector store")
		}
	})

	t.Run("min score bounds enforced", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("SEARCH_MIN_SCORE", "1.5")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for out-of-range SEARCH_MIN_SCORE")
		}
	})
}
