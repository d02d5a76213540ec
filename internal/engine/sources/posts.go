package sources

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// TopPostLimit is how many posts per network make it into the brief.
const TopPostLimit = 50

// Post is a social post normalised across networks. Views and Likes are
// set for X, Reactions for LinkedIn.
type Post struct {
	URL       string `json:"url"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Views     int64  `json:"views,omitempty"`
	Likes     int64  `json:"likes,omitempty"`
	Reactions int64  `json:"reactions,omitempty"`
}

// TopByViews ranks X posts by views, then likes, and keeps the first n.
func TopByViews(posts []Post, n int) []Post {
	return top(posts, n, func(a, b Post) int {
		if c := cmp.Compare(b.Views, a.Views); c != 0 {
			return c
		}
		return cmp.Compare(b.Likes, a.Likes)
	})
}

// TopByReactions ranks LinkedIn posts by total reactions and keeps the first n.
func TopByReactions(posts []Post, n int) []Post {
	return top(posts, n, func(a, b Post) int {
		return cmp.Compare(b.Reactions, a.Reactions)
	})
}

func top(posts []Post, n int, order func(a, b Post) int) []Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, order)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	time.RubyDate, // X: "Mon Jan 02 15:04:05 -0700 2006"
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeDate renders any known timestamp layout as YYYY-MM-DD.
// Unrecognised input is returned trimmed.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return s
}
