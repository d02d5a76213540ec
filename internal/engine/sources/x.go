package sources

import (
	"context"
	"fmt"
	"log/slog"

	twitter "github.com/anatolykoptev/go-twitter"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

const (
	xActorID      = "nfp1fpt5gUlBwPcor"
	xMaxItems     = 1000
	xTimelineSize = 200
)

type xActorItem struct {
	URL       string `json:"url"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	ViewCount int64  `json:"viewCount"`
	LikeCount int64  `json:"likeCount"`
}

// XPosts collects a person's recent X posts: from the go-twitter client when
// configured, otherwise (or when it yields nothing) from the Apify scraper.
type XPosts struct {
	tw      *twitter.Client
	apify   *Apify
	metrics *engine.Metrics
}

// NewXPosts builds the X source. Either client may be nil.
func NewXPosts(tw *twitter.Client, apify *Apify, m *engine.Metrics) *XPosts {
	if m == nil {
		m = &engine.Metrics{}
	}
	return &XPosts{tw: tw, apify: apify, metrics: m}
}

// Fetch returns the posts of handle ("@name", name or profile URL).
func (x *XPosts) Fetch(ctx context.Context, handle string) ([]Post, error) {
	handle = engine.SanitizeHandle(handle)
	if handle == "" {
		return nil, fmt.Errorf("x: empty handle: %w", ErrNotConfigured)
	}
	if x.tw == nil && x.apify == nil {
		return nil, fmt.Errorf("x: no twitter accounts or apify key: %w", ErrNotConfigured)
	}
	x.metrics.XRequests.Add(1)

	if x.tw != nil {
		posts, err := x.fromTimeline(ctx, handle)
		if err == nil && len(posts) > 0 {
			return posts, nil
		}
		if x.apify == nil {
			if err == nil {
				return posts, nil
			}
			return nil, err
		}
		slog.Warn("x: timeline search gave nothing, using apify",
			slog.String("handle", handle), slog.Any("error", err))
	}
	return x.fromApify(ctx, handle)
}

func (x *XPosts) fromTimeline(ctx context.Context, handle string) ([]Post, error) {
	tweets, err := x.tw.SearchTimeline(ctx, "from:"+handle, xTimelineSize)
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}
	posts := make([]Post, 0, len(tweets))
	for _, t := range tweets {
		posts = append(posts, Post{
			URL:   "https://x.com/" + handle + "/status/" + t.ID,
			Text:  t.Text,
			Date:  t.CreatedAt.UTC().Format("2006-01-02"),
			Likes: int64(t.Likes),
		})
	}
	slog.Info("x: timeline posts", slog.String("handle", handle), slog.Int("posts", len(posts)))
	return posts, nil
}

func (x *XPosts) fromApify(ctx context.Context, handle string) ([]Post, error) {
	var items []xActorItem
	err := x.apify.RunActor(ctx, xActorID, map[string]any{
		"twitterHandles": []string{handle},
		"sort":           "Latest",
		"maxItems":       xMaxItems,
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	posts := make([]Post, 0, len(items))
	for _, it := range items {
		if it.URL == "" && it.Text == "" {
			continue
		}
		posts = append(posts, Post{
			URL:   it.URL,
			Text:  it.Text,
			Date:  NormalizeDate(it.CreatedAt),
			Views: it.ViewCount,
			Likes: it.LikeCount,
		})
	}
	slog.Info("x: apify posts", slog.String("handle", handle), slog.Int("posts", len(posts)))
	return posts, nil
}
