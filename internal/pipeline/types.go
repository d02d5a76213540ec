// Package pipeline wires sources, question synthesis and publishing into a
// single sequential brief run over the JSON artifacts in the data directory.
package pipeline

import (
	"context"

	"github.com/anatolykoptev/go_brief/internal/engine/sources"
	"github.com/anatolykoptev/go_brief/internal/publish"
	"github.com/anatolykoptev/go_brief/internal/questions"
)

// VideosFile is the search result artifact.
type VideosFile struct {
	Videos []sources.Video `json:"videos"`
}

// Caption is one video's transcript record.
type Caption struct {
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	Date       string `json:"date"`
	URL        string `json:"url,omitempty"`
	Transcript string `json:"transcript"`
	Subtitles  string `json:"subtitles,omitempty"`
}

// CaptionsFile maps video id to its transcript record.
type CaptionsFile map[string]Caption

// VideoQuestions is the per-video extraction result.
type VideoQuestions struct {
	Title     string              `json:"title"`
	Channel   string              `json:"channel"`
	Date      string              `json:"date"`
	Questions []string            `json:"questions"`
	Aligned   []questions.Aligned `json:"aligned,omitempty"`
}

// VideoQuestionsFile maps video id to its extracted questions.
type VideoQuestionsFile map[string]VideoQuestions

// BucketedFile maps bucket name to the questions selected for it.
type BucketedFile map[string][]questions.Aligned

// VideoSource finds podcast videos and their subtitle tracks.
type VideoSource interface {
	Search(ctx context.Context, query string, limit int) ([]sources.Video, error)
	Subtitles(ctx context.Context, videoID string) (string, error)
}

// PostSource fetches a person's posts on one network.
type PostSource interface {
	Fetch(ctx context.Context, handle string) ([]sources.Post, error)
}

// QuestionExtractor pulls interview questions out of a transcript.
type QuestionExtractor interface {
	Extract(ctx context.Context, fullText, person string) ([]questions.Extracted, error)
}

type QuestionCleaner interface {
	Clean(ctx context.Context, qs []questions.Aligned) ([]questions.Aligned, error)
}

type QuestionBucketer interface {
	Bucket(ctx context.Context, qs []questions.Aligned) (map[string][]questions.Aligned, error)
}

// Publisher delivers the finished brief and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, b publish.Brief) (string, error)
}
