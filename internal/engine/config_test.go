package engine

import (
	"errors"
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		PersonName:    "Jane Doe",
		LLMAPIBase:    "https://api.openai.com/v1",
		LLMModel:      "gpt-4",
		LLMMaxTokens:  4096,
		LLMRPS:        1,
		MaxChunkChars: 15000,
		DataDir:       "data",
		FetchTimeout:  1,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PERSON_NAME", "Jane Doe")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	for _, k := range []string{"LLM_API_KEY", "MAX_CHUNK_CHARS", "DATA_DIR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	c := LoadConfig()
	if c.PersonName != "Jane Doe" {
		t.Errorf("PersonName = %q", c.PersonName)
	}
	if c.LLMAPIKey != "sk-test" {
		t.Errorf("LLMAPIKey = %q, want OPENAI_API_KEY fallback", c.LLMAPIKey)
	}
	if c.MaxChunkChars != 15000 {
		t.Errorf("MaxChunkChars = %d, want 15000", c.MaxChunkChars)
	}
	if c.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", c.DataDir)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad notion url", func(c *Config) { c.NotionPage = "not a url" }, true},
		{"zero chunk", func(c *Config) { c.MaxChunkChars = 0 }, true},
		{"zero rps", func(c *Config) { c.LLMRPS = 0 }, true},
		{"no model", func(c *Config) { c.LLMModel = "" }, true},
		{"notion url ok", func(c *Config) { c.NotionPage = "https://www.notion.so/team/Brief-0123456789abcdef" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateRun_RequiresPerson(t *testing.T) {
	c := validConfig()
	c.PersonName = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, person is only needed for a run", err)
	}
	if err := c.ValidateRun(); !errors.Is(err, ErrNoPerson) {
		t.Errorf("ValidateRun() = %v, want ErrNoPerson", err)
	}
}
