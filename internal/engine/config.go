package engine

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	twitter "github.com/anatolykoptev/go-twitter"
	"github.com/go-playground/validator/v10"
)

// ErrNoPerson is returned when a brief run has no subject.
var ErrNoPerson = errors.New("PERSON_NAME is required")

// Config holds all engine configuration, built once in main and passed down.
type Config struct {
	PersonName     string
	XHandle        string
	LinkedInHandle string

	NotionAPIKey string
	NotionPage   string `validate:"omitempty,url"`

	ApifyAPIKey           string
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string  `validate:"required,url"`
	LLMModel           string  `validate:"required"`
	LLMTemperature     float64 `validate:"gte=0,lte=2"`
	LLMMaxTokens       int     `validate:"gt=0"`
	LLMRPS             float64 `validate:"gt=0"`
	MaxChunkChars      int     `validate:"gt=0"`

	DataDir    string `validate:"required"`
	LedgerPath string

	RedisURL             string
	CacheTTL             time.Duration `validate:"gte=0"`
	CacheMaxEntries      int           `validate:"gte=0"`
	CacheCleanupInterval time.Duration `validate:"gte=0"`
	FetchTimeout         time.Duration `validate:"gt=0"`

	HTTPClient    *http.Client    `validate:"-"`
	BrowserClient *BrowserClient  `validate:"-"` // nil = plain HTTP for YouTube pages
	TwitterClient *twitter.Client `validate:"-"` // nil = X posts via Apify only
}

// LoadConfig reads the environment. Clients are attached by the caller.
func LoadConfig() Config {
	openAIKey := env.Str("OPENAI_API_KEY", "")
	return Config{
		PersonName:     env.Str("PERSON_NAME", ""),
		XHandle:        env.Str("PERSON_X_HANDLE", ""),
		LinkedInHandle: env.Str("PERSON_LI_HANDLE", ""),

		NotionAPIKey: env.Str("NOTION_API_KEY", ""),
		NotionPage:   env.Str("NOTION_PAGE", ""),

		ApifyAPIKey:           env.Str("APIFY_API_KEY", ""),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),

		LLMAPIKey:          env.Str("LLM_API_KEY", openAIKey),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:           env.Str("LLM_MODEL", "gpt-4"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 4096),
		LLMRPS:             env.Float("LLM_RPS", 1),
		MaxChunkChars:      env.Int("MAX_CHUNK_CHARS", 15000),

		DataDir:    env.Str("DATA_DIR", "data"),
		LedgerPath: env.Str("LEDGER_PATH", ""),

		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 24*time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
	}
}

var validate = validator.New()

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ValidateRun additionally requires a person to brief.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validate.Var(c.PersonName, "required"); err != nil {
		return ErrNoPerson
	}
	return nil
}
