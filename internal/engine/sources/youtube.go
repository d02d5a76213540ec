package sources

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

// YouTube implementation is split across three files by responsibility:
//   youtube_innertube.go   Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go  timed subtitle fetching (watch page, engagement panel, ANDROID player)
//   youtube_search.go      video search (Data API v3 + ytInitialData scraping)

const (
	ytDataAPIBase = "https://www.googleapis.com/youtube/v3"
	ytWebBase     = "https://www.youtube.com"
)

// Video is one search hit as stored in the videos artifact.
type Video struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Channel     string `json:"channel"`
	Date        string `json:"date"`
	Description string `json:"description"`
	VideoID     string `json:"video_id"`
}

// WatchURL is the canonical watch page for a video id.
func WatchURL(id string) string {
	return ytWebBase + "/watch?v=" + id
}

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

var bareIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
// A bare id is returned as is.
func ExtractVideoID(rawURL string) string {
	if bareIDRE.MatchString(rawURL) {
		return rawURL
	}
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// RetryPolicy is the exponential backoff applied to subtitle fetches.
type RetryPolicy struct {
	Attempts uint
	Initial  time.Duration
	Max      time.Duration
}

// DefaultSubtitleRetry waits 1s, 2s, 4s, 8s, then 10s between attempts.
var DefaultSubtitleRetry = RetryPolicy{Attempts: 10, Initial: time.Second, Max: 10 * time.Second}

// YouTube searches videos and fetches their timed subtitles.
type YouTube struct {
	http    *http.Client
	browser *engine.BrowserClient
	apiKeys []string
	cache   *engine.Cache
	metrics *engine.Metrics
	retry   RetryPolicy

	dataAPIBase string
	webBase     string
}

// NewYouTube builds the YouTube source from c. cache may be nil.
func NewYouTube(c engine.Config, cache *engine.Cache, m *engine.Metrics) *YouTube {
	var keys []string
	for _, k := range []string{c.YouTubeAPIKey, c.YouTubeAPIKeyFallback} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		slog.Warn("youtube: no API key configured, search falls back to page scraping")
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: c.FetchTimeout}
	}
	if m == nil {
		m = &engine.Metrics{}
	}
	return &YouTube{
		http:        client,
		browser:     c.BrowserClient,
		apiKeys:     keys,
		cache:       cache,
		metrics:     m,
		retry:       DefaultSubtitleRetry,
		dataAPIBase: ytDataAPIBase,
		webBase:     ytWebBase,
	}
}

// getPage fetches an HTML page, preferring the Chrome-fingerprinted client.
func (y *YouTube) getPage(ctx context.Context, pageURL string) ([]byte, error) {
	if y.browser != nil {
		data, status, err := y.browser.Do(http.MethodGet, pageURL, engine.ChromeHeaders(), nil)
		if err == nil && status == http.StatusOK {
			return data, nil
		}
		slog.Debug("youtube: browser client failed, using plain HTTP",
			slog.String("url", pageURL), slog.Int("status", status), slog.Any("error", err))
	}
	return engine.FetchBytes(ctx, y.http, http.MethodGet, pageURL, map[string]string{
		"User-Agent":      engine.RandomUserAgent(),
		"Accept-Language": "en-US,en;q=0.9",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}, nil)
}
