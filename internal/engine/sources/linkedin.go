package sources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

const (
	linkedInActorID = "LQQIXN9Othf8f7R5n"
	linkedInLimit   = 100
)

type linkedInActorItem struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	PostedAt struct {
		Date string `json:"date"`
	} `json:"posted_at"`
	Stats struct {
		TotalReactions int64 `json:"total_reactions"`
	} `json:"stats"`
}

// LinkedInPosts collects a person's LinkedIn posts through an Apify actor.
type LinkedInPosts struct {
	apify   *Apify
	metrics *engine.Metrics
}

func NewLinkedInPosts(apify *Apify, m *engine.Metrics) *LinkedInPosts {
	if m == nil {
		m = &engine.Metrics{}
	}
	return &LinkedInPosts{apify: apify, metrics: m}
}

// Fetch returns the posts for handle, a username or profile URL.
func (l *LinkedInPosts) Fetch(ctx context.Context, handle string) ([]Post, error) {
	user := engine.SanitizeHandle(handle)
	if user == "" {
		return nil, fmt.Errorf("linkedin: empty handle: %w", ErrNotConfigured)
	}
	if l.apify == nil {
		return nil, fmt.Errorf("linkedin: no apify key: %w", ErrNotConfigured)
	}
	l.metrics.LinkedInRequests.Add(1)

	var items []linkedInActorItem
	err := l.apify.RunActor(ctx, linkedInActorID, map[string]any{
		"username":    user,
		"page_number": 1,
		"limit":       linkedInLimit,
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("linkedin: %w", err)
	}

	posts := make([]Post, 0, len(items))
	for _, it := range items {
		if it.URL == "" && it.Text == "" {
			continue
		}
		posts = append(posts, Post{
			URL:       it.URL,
			Text:      it.Text,
			Date:      NormalizeDate(it.PostedAt.Date),
			Reactions: it.Stats.TotalReactions,
		})
	}
	slog.Info("linkedin: posts", slog.String("user", user), slog.Int("posts", len(posts)))
	return posts, nil
}
