package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

// YouTube search: Data API v3 with scraping fallback.

const (
	ytInitialDataMarker = "var ytInitialData = "
	ytSearchFilter      = "EgIQAQ%3D%3D" // videos-only filter param
	ytMaxResults        = 50
)

// --- YouTube Data API v3 types ---

type ytDataSearchResp struct {
	Items []ytDataItem `json:"items"`
}

type ytDataItem struct {
	ID      ytDataItemID      `json:"id"`
	Snippet ytDataItemSnippet `json:"snippet"`
}

type ytDataItemID struct {
	VideoID string `json:"videoId"`
}

type ytDataItemSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

// --- ytInitialData scraping types ---

type ytRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r ytRuns) join() string {
	var sb strings.Builder
	for _, run := range r.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

type ytVideoRenderer struct {
	VideoID            string  `json:"videoId"`
	Title              ytRuns  `json:"title"`
	OwnerText          ytRuns  `json:"ownerText"`
	DescriptionSnippet *ytRuns `json:"descriptionSnippet"`
}

// Search finds videos for query. Data API v3 is used when a key is
// configured, trying the secondary key on failure. Without keys, or when
// every key fails, the results page is scraped instead.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	if limit <= 0 || limit > ytMaxResults {
		limit = 10
	}
	key := engine.CacheKey("yt_search", query, strconv.Itoa(limit))
	if cached, ok := engine.CacheLoadJSON[[]Video](ctx, y.cache, key); ok {
		return cached, nil
	}
	y.metrics.YouTubeSearches.Add(1)

	var videos []Video
	var err error
	if len(y.apiKeys) > 0 {
		videos, err = y.searchDataAPI(ctx, query, limit)
		if err != nil {
			slog.Warn("youtube: data API failed, scraping results page", slog.Any("error", err))
		}
	}
	if len(y.apiKeys) == 0 || err != nil {
		videos, err = y.searchInitialData(ctx, query, limit)
		if err != nil {
			return nil, err
		}
	}

	engine.CacheStoreJSON(ctx, y.cache, key, videos)
	return videos, nil
}

// searchDataAPI tries each configured key in order.
func (y *YouTube) searchDataAPI(ctx context.Context, query string, limit int) ([]Video, error) {
	var lastErr error
	for i, apiKey := range y.apiKeys {
		videos, err := y.doDataSearch(ctx, query, limit, apiKey)
		if err == nil {
			return videos, nil
		}
		lastErr = err
		slog.Debug("youtube data API key failed", slog.Int("key", i), slog.Any("error", err))
	}
	return nil, lastErr
}

func (y *YouTube) doDataSearch(ctx context.Context, query string, limit int, apiKey string) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("relevanceLanguage", "en")
	params.Set("key", apiKey)

	var result ytDataSearchResp
	err := engine.FetchJSON(ctx, y.http, http.MethodGet, y.dataAPIBase+"/search?"+params.Encode(), nil, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}

	videos := make([]Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		date, _, _ := strings.Cut(item.Snippet.PublishedAt, "T")
		videos = append(videos, Video{
			Title:       item.Snippet.Title,
			URL:         WatchURL(item.ID.VideoID),
			Channel:     item.Snippet.ChannelTitle,
			Date:        date,
			Description: item.Snippet.Description,
			VideoID:     item.ID.VideoID,
		})
	}
	return videos, nil
}

// searchInitialData scrapes YouTube search results by parsing ytInitialData.
// Scraped results carry no publish date.
func (y *YouTube) searchInitialData(ctx context.Context, query string, limit int) ([]Video, error) {
	searchURL := y.webBase + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter
	body, err := y.getPage(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialData not found in YouTube search response")
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialData JSON")
	}
	return extractVideosFromInitialData(jsonData, limit), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// extractVideosFromInitialData recursively walks ytInitialData JSON for videoRenderer entries.
func extractVideosFromInitialData(data []byte, limit int) []Video {
	var results []Video
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytVideoRenderer
				if err := json.Unmarshal(raw, &vr); err == nil && vr.VideoID != "" {
					desc := ""
					if vr.DescriptionSnippet != nil {
						desc = vr.DescriptionSnippet.join()
					}
					results = append(results, Video{
						Title:       vr.Title.join(),
						URL:         WatchURL(vr.VideoID),
						Channel:     vr.OwnerText.join(),
						Description: desc,
						VideoID:     vr.VideoID,
					})
					return
				}
			}
			for _, child := range obj {
				if len(results) >= limit {
					return
				}
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(results) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(data)
	return results
}
