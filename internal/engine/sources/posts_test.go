package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

// apifyServer answers run-sync calls for actor with body and records the input.
func apifyServer(t *testing.T, actor, body string, input *map[string]any) (*httptest.Server, *Apify) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/acts/"+actor+"/run-sync-get-dataset-items", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		if input != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(input))
		}
		fmt.Fprint(w, body)
	}))
	a := NewApify("tok")
	a.http = srv.Client()
	a.base = srv.URL
	return srv, a
}

func TestNewApify_EmptyToken(t *testing.T) {
	a := NewApify("")
	assert.Nil(t, a)
	err := a.RunActor(context.Background(), "x", nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestXPosts_Apify(t *testing.T) {
	var input map[string]any
	srv, a := apifyServer(t, xActorID, `[
		{"url":"https://x.com/jane/status/1","text":"first","createdAt":"Fri Nov 24 17:49:36 +0000 2023","viewCount":10,"likeCount":1},
		{"url":"","text":""},
		{"url":"https://x.com/jane/status/2","text":"second","createdAt":"2024-02-01T10:00:00Z","viewCount":99}
	]`, &input)
	defer srv.Close()

	m := &engine.Metrics{}
	posts, err := NewXPosts(nil, a, m).Fetch(context.Background(), "https://x.com/jane")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, Post{URL: "https://x.com/jane/status/1", Text: "first", Date: "2023-11-24", Views: 10, Likes: 1}, posts[0])
	assert.Equal(t, "2024-02-01", posts[1].Date)
	assert.Equal(t, []any{"jane"}, input["twitterHandles"])
	assert.Equal(t, "Latest", input["sort"])
	assert.EqualValues(t, xMaxItems, input["maxItems"])
	assert.Equal(t, int64(1), m.XRequests.Load())
}

func TestXPosts_NotConfigured(t *testing.T) {
	_, err := NewXPosts(nil, nil, nil).Fetch(context.Background(), "jane")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = NewXPosts(nil, NewApify("tok"), nil).Fetch(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestLinkedInPosts_Apify(t *testing.T) {
	var input map[string]any
	srv, a := apifyServer(t, linkedInActorID, `[
		{"url":"https://www.linkedin.com/posts/1","text":"hello","posted_at":{"date":"2024-03-05 08:09:10"},"stats":{"total_reactions":42}}
	]`, &input)
	defer srv.Close()

	m := &engine.Metrics{}
	posts, err := NewLinkedInPosts(a, m).Fetch(context.Background(), "https://www.linkedin.com/in/jane-doe/")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, Post{URL: "https://www.linkedin.com/posts/1", Text: "hello", Date: "2024-03-05", Reactions: 42}, posts[0])
	assert.Equal(t, "jane-doe", input["username"])
	assert.EqualValues(t, 1, input["page_number"])
	assert.EqualValues(t, linkedInLimit, input["limit"])
	assert.Equal(t, int64(1), m.LinkedInRequests.Load())
}

func TestLinkedInPosts_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))
	defer srv.Close()
	a := NewApify("tok")
	a.http = srv.Client()
	a.base = srv.URL

	_, err := NewLinkedInPosts(a, nil).Fetch(context.Background(), "jane")
	require.Error(t, err)
	var se *engine.StatusError
	assert.True(t, errors.As(err, &se))
}

func TestTopByViews(t *testing.T) {
	posts := []Post{
		{URL: "a", Views: 5, Likes: 1},
		{URL: "b", Views: 9},
		{URL: "c", Views: 5, Likes: 7},
		{URL: "d"},
	}
	got := TopByViews(posts, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{got[0].URL, got[1].URL, got[2].URL})
	assert.Equal(t, "a", posts[0].URL, "input must not be reordered")
}

func TestTopByReactions(t *testing.T) {
	posts := make([]Post, 0, 60)
	for i := range 60 {
		posts = append(posts, Post{URL: fmt.Sprint(i), Reactions: int64(i)})
	}
	got := TopByReactions(posts, TopPostLimit)
	require.Len(t, got, TopPostLimit)
	assert.Equal(t, int64(59), got[0].Reactions)
	assert.Equal(t, int64(10), got[TopPostLimit-1].Reactions)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2024-01-02T03:04:05Z", "2024-01-02"},
		{"Fri Nov 24 17:49:36 +0000 2023", "2023-11-24"},
		{"2024-03-05 08:09:10", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{" yesterday ", "yesterday"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
