package briefserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_brief/internal/engine"
	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/pipeline"
	"github.com/anatolykoptev/go_brief/internal/publish"
	"github.com/anatolykoptev/go_brief/internal/questions"
	"github.com/anatolykoptev/go_brief/internal/toolutil"
	"github.com/anatolykoptev/go_brief/internal/transcript"
)

const maxPodcasts = 50

// PodcastsInput is the input for youtube_podcasts.
type PodcastsInput struct {
	Person string `json:"person" jsonschema:"Full name of the person to find podcast appearances for"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max videos to return (default 10, max 50)"`
}

// PodcastsOutput is the output of youtube_podcasts.
type PodcastsOutput struct {
	Query  string          `json:"query"`
	Count  int             `json:"count"`
	Videos []sources.Video `json:"videos"`
}

func (t *tools) podcasts(ctx context.Context, in PodcastsInput) (*PodcastsOutput, error) {
	person := strings.TrimSpace(in.Person)
	if person == "" {
		return nil, errPersonRequired
	}
	limit := toolutil.ClampLimit(in.Limit, pipeline.DefaultVideoLimit, maxPodcasts)
	query := person + " podcast"

	key := engine.CacheKey("podcasts", strings.ToLower(query), strconv.Itoa(limit))
	return toolutil.Cached(ctx, t.Cache, key, func(ctx context.Context) (*PodcastsOutput, error) {
		videos, err := t.Videos.Search(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("youtube search: %w", err)
		}
		if videos == nil {
			videos = []sources.Video{}
		}
		return &PodcastsOutput{Query: query, Count: len(videos), Videos: videos}, nil
	})
}

// QuestionsInput is the input for video_questions.
type QuestionsInput struct {
	Video  string `json:"video" jsonschema:"YouTube video URL or 11-character video id"`
	Person string `json:"person,omitempty" jsonschema:"Name of the interviewee, used to tell their answers apart from the host's questions"`
}

// VideoQuestion is one question with where it was asked.
type VideoQuestion struct {
	Question  string `json:"question"`
	Timestamp string `json:"timestamp,omitempty"`
	Link      string `json:"link"`
}

// QuestionsOutput is the output of video_questions.
type QuestionsOutput struct {
	VideoID   string          `json:"video_id"`
	URL       string          `json:"url"`
	Segments  int             `json:"segments"`
	Count     int             `json:"count"`
	Questions []VideoQuestion `json:"questions"`
}

func (t *tools) questions(ctx context.Context, in QuestionsInput) (*QuestionsOutput, error) {
	id := sources.ExtractVideoID(strings.TrimSpace(in.Video))
	if id == "" {
		return nil, errors.New("video must be a YouTube URL or video id")
	}
	person := strings.TrimSpace(in.Person)
	if person == "" {
		person = t.Defaults.Person
	}

	key := engine.CacheKey("questions", id, strings.ToLower(person))
	return toolutil.Cached(ctx, t.Cache, key, func(ctx context.Context) (*QuestionsOutput, error) {
		srt, err := t.Videos.Subtitles(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("subtitles %s: %w", id, err)
		}
		tr := transcript.Parse(srt)
		if tr.Empty() {
			return nil, fmt.Errorf("subtitles %s: %w", id, sources.ErrNoCaptions)
		}

		url := sources.WatchURL(id)
		extracted, err := t.Extractor.Extract(ctx, tr.FullText, person)
		if err != nil {
			return nil, fmt.Errorf("questions %s: %w", id, err)
		}
		aligned := questions.AlignAll(extracted, questions.NewLocator(tr.Segments), "", url)

		out := &QuestionsOutput{
			VideoID:   id,
			URL:       url,
			Segments:  len(tr.Segments),
			Questions: make([]VideoQuestion, 0, len(aligned)),
		}
		for _, a := range aligned {
			q := VideoQuestion{Question: a.Question, Link: publish.QuestionLink(url, a.Timestamp)}
			if a.Timestamp != nil {
				q.Timestamp = a.Timestamp.String()
			}
			out.Questions = append(out.Questions, q)
		}
		out.Count = len(out.Questions)
		return out, nil
	})
}
