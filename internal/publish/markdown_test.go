package publish

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go_brief/internal/questions"
)

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleBrief())

	assert.True(t, strings.HasPrefix(md, "# VC Brief: Jane Doe\n\n"))
	assert.Contains(t, md, "- Podcast questions: 2\n")
	assert.Contains(t, md, "## Top X Posts\n\n1. hello\n   2024-01-02 · 100 views, 0 likes · https://x.com/jane/status/1\n")
	assert.Contains(t, md, "   2024-02-03 · 7 reactions · https://linkedin.com/posts/1\n")
	assert.Contains(t, md, "- How do you hire? ([Ep 1 @ 1m2s](https://www.youtube.com/watch?v=abc&t=1m2s))\n")
	assert.Contains(t, md, "- Where did you grow up? ([Ep 2](https://youtu.be/xyz))\n")

	early := strings.Index(md, "### "+questions.Buckets[0].Name)
	founders := strings.Index(md, "### "+questions.Buckets[1].Name)
	assert.True(t, early > 0 && founders > early, "buckets must follow definition order")
	assert.NotContains(t, md, questions.Buckets[2].Name)
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(Brief{Person: "Nobody"})
	assert.Contains(t, md, "- X posts: 0\n")
	assert.NotContains(t, md, "## ")
}
