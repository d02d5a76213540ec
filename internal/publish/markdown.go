package publish

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/questions"
)

// markdownPostLen caps post text in the local brief.
const markdownPostLen = 280

// RenderMarkdown renders the same content as the Notion page as a single
// Markdown document.
func RenderMarkdown(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# VC Brief: %s\n\n", b.Person)
	fmt.Fprintf(&sb, "- X posts: %d\n", len(b.XPosts))
	fmt.Fprintf(&sb, "- LinkedIn posts: %d\n", len(b.LinkedInPosts))
	fmt.Fprintf(&sb, "- Podcast questions: %d\n", countQuestions(b.Buckets))
	sb.WriteString("\n---\n\n")

	if len(b.XPosts) > 0 {
		sb.WriteString("## Top X Posts\n\n")
		writePosts(&sb, b.XPosts, func(p sources.Post) string {
			return fmt.Sprintf("%d views, %d likes", p.Views, p.Likes)
		})
	}
	if len(b.LinkedInPosts) > 0 {
		sb.WriteString("## Top LinkedIn Posts\n\n")
		writePosts(&sb, b.LinkedInPosts, func(p sources.Post) string {
			return fmt.Sprintf("%d reactions", p.Reactions)
		})
	}

	if len(b.Buckets) > 0 {
		sb.WriteString("## " + headingQuestions + "\n\n")
		for _, bucket := range questions.Buckets {
			qs := b.Buckets[bucket.Name]
			if len(qs) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "### %s\n\n", bucket.Name)
			for _, q := range qs {
				link := QuestionLink(q.VideoURL, q.Timestamp)
				switch {
				case link != "" && q.Timestamp != nil:
					fmt.Fprintf(&sb, "- %s ([%s @ %s](%s))\n", q.Question, q.VideoTitle, q.Timestamp.YouTubeParam(), link)
				case link != "":
					fmt.Fprintf(&sb, "- %s ([%s](%s))\n", q.Question, q.VideoTitle, link)
				default:
					fmt.Fprintf(&sb, "- %s\n", q.Question)
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writePosts(sb *strings.Builder, posts []sources.Post, stats func(sources.Post) string) {
	for i, p := range posts {
		text := strings.Join(strings.Fields(p.Text), " ")
		fmt.Fprintf(sb, "%d. %s\n", i+1, engine.TruncateAtWord(text, markdownPostLen))
		meta := stats(p)
		if p.Date != "" {
			meta = p.Date + " · " + meta
		}
		if p.URL != "" {
			meta += " · " + p.URL
		}
		fmt.Fprintf(sb, "   %s\n", meta)
	}
	sb.WriteString("\n")
}

func countQuestions(buckets map[string][]questions.Aligned) int {
	n := 0
	for _, qs := range buckets {
		n += len(qs)
	}
	return n
}
