package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/questions"
	"github.com/anatolykoptev/go_brief/internal/transcript"
)

type fakeDB struct {
	title   string
	columns []Column
	rows    []Row
}

// fakeWorkspace records page operations in call order.
type fakeWorkspace struct {
	title    string
	headings []string
	dbs      []*fakeDB
	failDB   string
	failRow  string
	failPage bool
}

func (f *fakeWorkspace) SetPageTitle(_ context.Context, _, title string) error {
	if f.failPage {
		return errors.New("page not shared with integration")
	}
	f.title = title
	return nil
}

func (f *fakeWorkspace) AppendHeading(_ context.Context, _ string, level int, text string) error {
	f.headings = append(f.headings, fmt.Sprintf("h%d:%s", level, text))
	return nil
}

func (f *fakeWorkspace) CreateDatabase(_ context.Context, _, title string, columns []Column) (string, error) {
	if title == f.failDB {
		return "", errors.New("validation_error")
	}
	f.dbs = append(f.dbs, &fakeDB{title: title, columns: columns})
	return fmt.Sprint(len(f.dbs) - 1), nil
}

func (f *fakeWorkspace) AddRow(_ context.Context, id string, _ []Column, row Row) error {
	var i int
	fmt.Sscan(id, &i) //nolint:errcheck
	if s, _ := row["Post"].(string); f.failRow != "" && s == f.failRow {
		return errors.New("rate limited")
	}
	f.dbs[i].rows = append(f.dbs[i].rows, row)
	return nil
}

func tc(d time.Duration) *transcript.Timecode {
	t := transcript.Timecode(d)
	return &t
}

func sampleBrief() Brief {
	return Brief{
		Person: "Jane Doe",
		XPosts: []sources.Post{
			{URL: "https://x.com/jane/status/1", Text: "hello", Date: "2024-01-02", Views: 100},
		},
		LinkedInPosts: []sources.Post{
			{URL: "https://linkedin.com/posts/1", Text: "hi", Date: "2024-02-03", Reactions: 7},
		},
		Buckets: map[string][]questions.Aligned{
			questions.Buckets[1].Name: {
				{Question: "How do you hire?", Timestamp: tc(62 * time.Second), VideoTitle: "Ep 1", VideoURL: "https://www.youtube.com/watch?v=abc"},
			},
			questions.Buckets[0].Name: {
				{Question: "Where did you grow up?", VideoTitle: "Ep 2", VideoURL: "https://youtu.be/xyz"},
			},
		},
	}
}

func TestNotion_Publish(t *testing.T) {
	ws := &fakeWorkspace{}
	m := &engine.Metrics{}
	n, err := NewNotion(ws, "https://www.notion.so/team/Brief-0123456789abcdef0123456789abcdef?pvs=4", m)
	require.NoError(t, err)

	url, err := n.Publish(context.Background(), sampleBrief())
	require.NoError(t, err)
	assert.Equal(t, "https://www.notion.so/0123456789abcdef0123456789abcdef", url)
	assert.Equal(t, "VC Brief: Jane Doe", ws.title)
	assert.Equal(t, []string{
		"h1:" + headingX,
		"h1:" + headingLinkedIn,
		"h1:" + headingQuestions,
		"h3:" + questions.Buckets[0].Name,
		"h3:" + questions.Buckets[1].Name,
	}, ws.headings)

	require.Len(t, ws.dbs, 4)
	assert.Equal(t, "Top X Posts", ws.dbs[0].title)
	assert.Equal(t, Row{"Post": "hello", "Views": float64(100), "Date": "2024-01-02", "URL": "https://x.com/jane/status/1"}, ws.dbs[0].rows[0])
	assert.Equal(t, float64(7), ws.dbs[1].rows[0]["Reactions"])

	early := ws.dbs[2].rows[0]
	assert.Equal(t, "https://youtu.be/xyz", early["Link"])
	assert.Equal(t, "", early["Timestamp"])

	founders := ws.dbs[3].rows[0]
	assert.Equal(t, "https://www.youtube.com/watch?v=abc&t=1m2s", founders["Link"])
	assert.Equal(t, "00:01:02,000", founders["Timestamp"])
	assert.Equal(t, "Ep 1", founders["Video"])
	assert.Equal(t, int64(1), m.PublishRequests.Load())
}

func TestNotion_SectionFailuresAreSkipped(t *testing.T) {
	ws := &fakeWorkspace{failDB: "Top X Posts", failRow: "bad"}
	n, err := NewNotion(ws, "0123456789abcdef0123456789abcdef", nil)
	require.NoError(t, err)

	b := sampleBrief()
	b.LinkedInPosts = append(b.LinkedInPosts, sources.Post{Text: "bad"}, sources.Post{Text: "good"})
	_, err = n.Publish(context.Background(), b)
	require.NoError(t, err)

	require.Len(t, ws.dbs, 3)
	assert.Equal(t, "Top LinkedIn Posts", ws.dbs[0].title)
	assert.Len(t, ws.dbs[0].rows, 2)
}

func TestNotion_PageFailure(t *testing.T) {
	n, err := NewNotion(&fakeWorkspace{failPage: true}, "abc", nil)
	require.NoError(t, err)
	_, err = n.Publish(context.Background(), sampleBrief())
	assert.Error(t, err)
}

func TestNotion_LongTextIsCapped(t *testing.T) {
	ws := &fakeWorkspace{}
	n, _ := NewNotion(ws, "abc", nil)
	_, err := n.Publish(context.Background(), Brief{
		Person: "J",
		XPosts: []sources.Post{{Text: strings.Repeat("é", 2500)}},
	})
	require.NoError(t, err)
	post := ws.dbs[0].rows[0]["Post"].(string)
	assert.LessOrEqual(t, len([]rune(post)), maxTextLen)
	assert.Greater(t, len([]rune(post)), maxTextLen-10)
}

func TestNewNotion_NoPage(t *testing.T) {
	_, err := NewNotion(&fakeWorkspace{}, "  ", nil)
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestExtractPageID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://www.notion.so/ws/Brief-0123456789abcdef0123456789abcdef?pvs=4", "0123456789abcdef0123456789abcdef"},
		{"https://www.notion.so/0123456789abcdef0123456789abcdef", "0123456789abcdef0123456789abcdef"},
		{"https://www.notion.so/ws/some-page/", "some-page"},
		{"plainid", "plainid"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractPageID(tt.in); got != tt.want {
			t.Errorf("ExtractPageID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuestionLink(t *testing.T) {
	assert.Equal(t, "https://youtu.be/x?t=3s", QuestionLink("https://youtu.be/x", tc(3*time.Second)))
	assert.Equal(t, "https://y.com/watch?v=x&t=1h0m5s", QuestionLink("https://y.com/watch?v=x", tc(time.Hour+5*time.Second)))
	assert.Equal(t, "https://youtu.be/x", QuestionLink("https://youtu.be/x", nil))
	assert.Equal(t, "", QuestionLink("", tc(time.Second)))
}

func TestNewNotionAPI_EmptyToken(t *testing.T) {
	assert.Nil(t, NewNotionAPI("", nil))
	assert.NotNil(t, NewNotionAPI("secret", nil))
}
