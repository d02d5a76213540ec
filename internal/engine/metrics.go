package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters for one process.
type Metrics struct {
	YouTubeSearches    atomic.Int64
	TranscriptFetches  atomic.Int64
	TranscriptRetries  atomic.Int64
	TranscriptFailures atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	XRequests          atomic.Int64
	LinkedInRequests   atomic.Int64
	PublishRequests    atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
}

var metricKeys = []string{
	"youtube_searches",
	"transcript_fetches", "transcript_retries", "transcript_failures",
	"llm_calls", "llm_errors",
	"x_requests", "linkedin_requests",
	"publish_requests",
	"cache_hits", "cache_misses",
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"youtube_searches":    m.YouTubeSearches.Load(),
		"transcript_fetches":  m.TranscriptFetches.Load(),
		"transcript_retries":  m.TranscriptRetries.Load(),
		"transcript_failures": m.TranscriptFailures.Load(),
		"llm_calls":           m.LLMCalls.Load(),
		"llm_errors":          m.LLMErrors.Load(),
		"x_requests":          m.XRequests.Load(),
		"linkedin_requests":   m.LinkedInRequests.Load(),
		"publish_requests":    m.PublishRequests.Load(),
		"cache_hits":          m.CacheHits.Load(),
		"cache_misses":        m.CacheMisses.Load(),
	}
}

// Format returns metrics as a simple text format for the HTTP endpoint.
func (m *Metrics) Format() string {
	snap := m.Snapshot()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, snap[k])
	}
	return sb.String()
}

// LogAttrs renders the counters as slog attributes.
func (m *Metrics) LogAttrs() []any {
	snap := m.Snapshot()
	attrs := make([]any, 0, len(metricKeys))
	for _, k := range metricKeys {
		attrs = append(attrs, slog.Int64(k, snap[k]))
	}
	return attrs
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if elapsed := time.Since(start); elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
