package questions

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want int
	}{
		{"empty", "", 10, 0},
		{"shorter than max", "hello", 10, 1},
		{"exact multiple", strings.Repeat("a", 30), 10, 3},
		{"remainder", strings.Repeat("a", 35000), 15000, 3},
		{"multibyte", strings.Repeat("é", 25), 10, 3},
		{"no limit", "hello", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(tt.text, tt.max)
			require.Len(t, chunks, tt.want)
			assert.Equal(t, tt.text, strings.Join(chunks, ""))
			for _, c := range chunks {
				if tt.max > 0 {
					assert.LessOrEqual(t, len([]rune(c)), tt.max)
				}
			}
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	text := strings.Repeat("x", 35)
	llm := &fakeLLM{reply: func(n int, _ string) (string, error) {
		switch n {
		case 1:
			return "```json\n[{\"question\": \"How did you start?\", \"snippet\": \"so how did you start\"}," +
				" {\"question\": \"What is next?\", \"snippet\": \"\"}]\n```", nil
		case 2:
			return "", errUpstream
		default:
			return "1. How did you start?\n2. Why venture capital?\n", nil
		}
	}}

	got, err := NewExtractor(llm, 15).Extract(context.Background(), text, "Jane Doe")
	require.NoError(t, err, "one failed chunk is not fatal")

	require.Len(t, llm.prompts, 3, "one request per chunk")
	assert.Contains(t, llm.prompts[0], "The guest is Jane Doe.")
	require.Len(t, got, 3)
	assert.Equal(t, "How did you start?", got[0].Question)
	assert.Equal(t, "so how did you start", got[0].Snippet)
	assert.Equal(t, "What is next?", got[1].Snippet, "missing snippet falls back to the question")
	assert.Equal(t, "Why venture capital?", got[2].Question)
}

func TestExtractor_EmptyTranscript(t *testing.T) {
	llm := &fakeLLM{reply: func(int, string) (string, error) { return "[]", nil }}
	got, err := NewExtractor(llm, 0).Extract(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, llm.prompts)
}

func TestExtractor_AllChunksFail(t *testing.T) {
	llm := &fakeLLM{reply: func(int, string) (string, error) { return "", errUpstream }}
	got, err := NewExtractor(llm, 10).Extract(context.Background(), strings.Repeat("x", 25), "")
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.ErrorIs(t, err, errUpstream)
	assert.Nil(t, got)
	assert.Len(t, llm.prompts, 3)
}

func TestExtractor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &fakeLLM{reply: func(int, string) (string, error) {
		cancel()
		return `[{"question":"A?","snippet":"a"}]`, nil
	}}
	got, err := NewExtractor(llm, 10).Extract(ctx, strings.Repeat("x", 25), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Len(t, llm.prompts, 1, "no request after cancellation")
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []replyItem
	}{
		{"object array", `[{"id":"q1","question":"A?"}]`, []replyItem{{ID: "q1", Question: "A?"}}},
		{"string array", `["A?","B?"]`, []replyItem{{Question: "A?"}, {Question: "B?"}}},
		{"wrapped", `{"questions":[{"question":"A?"}]}`, []replyItem{{Question: "A?"}}},
		{"numbered list", "1. A?\n2) B?\n\n- C?", []replyItem{{Question: "A?"}, {Question: "B?"}, {Question: "C?"}}},
		{"id tagged lines", "1. q4: A?\nq7: B?", []replyItem{{ID: "q4", Question: "A?"}, {ID: "q7", Question: "B?"}}},
		{"empty array", "[]", []replyItem{}},
		{"blank", "  ", nil},
		{"fenced", "```json\n[{\"question\":\"A?\"}]\n```", []replyItem{{Question: "A?"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeReply(tt.raw))
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"other language", "```javascript\n[1,2]\n```", "[1,2]"},
		{"bare fence", "```\nhello\n```", "hello"},
		{"single line", "```[1]```", "[1]"},
		{"no fence", "  plain  ", "plain"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.raw))
		})
	}
}
