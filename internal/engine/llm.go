package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// CompleteFunc is one chat completion round trip.
type CompleteFunc func(ctx context.Context, system, prompt string) (string, error)

// LLM is the completion service used by the question stages. Calls are
// paced by a token-bucket limiter and counted in Metrics. It does not retry.
type LLM struct {
	complete CompleteFunc
	limiter  *rate.Limiter
	metrics  *Metrics
}

// NewLLM builds an OpenAI-compatible client from c.
func NewLLM(c Config, m *Metrics) *LLM {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	temperature := c.LLMTemperature
	return NewLLMWith(func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt, llm.WithChatTemperature(temperature))
	}, c.LLMRPS, m)
}

// NewLLMWith wraps an arbitrary completion function. rps <= 0 disables pacing.
func NewLLMWith(fn CompleteFunc, rps float64, m *Metrics) *LLM {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if m == nil {
		m = &Metrics{}
	}
	return &LLM{complete: fn, limiter: rate.NewLimiter(limit, 1), metrics: m}
}

// Complete sends one request and returns the trimmed reply. Callers parse the
// reply themselves, fences included.
func (l *LLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}
	l.metrics.LLMCalls.Add(1)
	resp, err := l.complete(ctx, system, prompt)
	if err != nil {
		l.metrics.LLMErrors.Add(1)
		return "", fmt.Errorf("llm: %w", err)
	}
	return strings.TrimSpace(resp), nil
}
